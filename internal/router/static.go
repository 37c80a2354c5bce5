package router

import (
	"errors"

	"github.com/Brownie44l1/staticd/internal/files"
	"github.com/Brownie44l1/staticd/internal/request"
	"github.com/Brownie44l1/staticd/internal/response"
)

// DefaultBadRequestPage is the document sent as the body of a 400.
const DefaultBadRequestPage = "400.html"

// Resolver provides file contents for the static handlers.
type Resolver interface {
	Resolve(target string) ([]byte, error)
	ReadFile(name string) ([]byte, error)
}

// StaticOptions names the companion error documents. An empty name means
// the matching status is sent without a body.
type StaticOptions struct {
	BadRequestPage string
	NotFoundPage   string
}

// NewStatic wires the file serving policy:
//
//   - GET resolves the target and returns its bytes, or 404.
//   - HEAD answers with the status GET would have, never with a body.
//   - POST is accepted with an empty 200 and never touches the filesystem.
//   - anything else is a 400.
func NewStatic(resolver Resolver, opts StaticOptions) *Dispatcher {
	s := &static{resolver: resolver, opts: opts}

	d := New()
	d.GET(s.get)
	d.HEAD(s.head)
	d.POST(s.post)
	d.Fallback(s.badRequest)
	return d
}

type static struct {
	resolver Resolver
	opts     StaticOptions
}

func (s *static) get(req *request.Request) response.Response {
	if !req.HasTarget() {
		return s.badRequest(req)
	}

	data, err := s.resolver.Resolve(req.Target)
	switch {
	case err == nil:
		return response.OK(data)
	case errors.Is(err, files.ErrInvalidTarget):
		return s.badRequest(req)
	default:
		return response.NotFound(s.page(s.opts.NotFoundPage))
	}
}

func (s *static) head(req *request.Request) response.Response {
	res := s.get(req)
	res.Body = nil
	return res
}

func (s *static) post(req *request.Request) response.Response {
	if !req.HasTarget() {
		return s.badRequest(req)
	}
	return response.OK(nil)
}

func (s *static) badRequest(*request.Request) response.Response {
	return response.BadRequest(s.page(s.opts.BadRequestPage))
}

// page reads an error document. A missing document yields nil so the
// status goes out without a body.
func (s *static) page(name string) []byte {
	if name == "" {
		return nil
	}
	data, err := s.resolver.ReadFile(name)
	if err != nil {
		return nil
	}
	return data
}
