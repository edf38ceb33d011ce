package payload

import (
	"errors"
	"time"

	"treblle-hq/relay/pkg/config"
	"treblle-hq/relay/pkg/extract"
	"treblle-hq/relay/pkg/masking"
	"treblle-hq/relay/pkg/schema"
)

// ErrIncompleteExtraction marks an adapter that violated the extraction
// contract: a request without method or URL, or a response without a status
// code. Under contract this never happens; when it does, the observation is
// dropped and the host request is untouched.
var ErrIncompleteExtraction = errors.New("payload: incomplete extraction")

// Builder assembles payloads for one Config. Cheap to create; hosts that hot
// reload configuration build a new one per Config generation.
type Builder struct {
	cfg    *config.Config
	engine *masking.Engine
}

// NewBuilder creates a Builder whose masking engine is compiled from the
// Config's pattern set and depth cap.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		cfg:    cfg,
		engine: masking.NewEngine(cfg.MaskedFields(), cfg.MaxDepth),
	}
}

// Engine exposes the builder's masking engine so adapters and the logger
// share the same compiled pattern set.
func (b *Builder) Engine() *masking.Engine {
	return b.engine
}

// Build produces the payload for one observed request/response pair. Headers
// and bodies are masked here, on the telemetry-owned copies the extractor
// returned; nothing the host application sees is modified.
func (b *Builder) Build(x extract.Extractor, duration time.Duration) (*schema.TrebllePayload, error) {
	req := x.ExtractRequest()
	if req.Method == "" || req.URL == "" {
		return nil, ErrIncompleteExtraction
	}

	res := x.ExtractResponse(duration)
	if res.Code == 0 {
		return nil, ErrIncompleteExtraction
	}

	req.Headers = b.engine.MaskHeaders(req.Headers)
	req.Body = b.engine.Mask(req.Body)
	res.Headers = b.engine.MaskHeaders(res.Headers)
	res.Body = b.engine.Mask(res.Body)

	p := schema.NewPayload(b.cfg.APIKey, b.cfg.ProjectID)
	p.Data.Server = Environment()
	p.Data.Language = Language()
	p.Data.Request = req
	p.Data.Response = res
	if errs := x.ExtractErrors(); len(errs) > 0 {
		p.Data.Errors = errs
	}
	return p, nil
}
