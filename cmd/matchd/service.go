package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/varmint/varmint/cases"
	"github.com/varmint/varmint/match"
	"github.com/varmint/varmint/notation"
)

// Config is the daemon's YAML configuration: the families values can
// use and the ordered cases to dispatch them through.
type Config struct {
	Doc string `yaml:"doc,omitempty"`

	Families []notation.FamilyDecl `yaml:"families,omitempty"`

	Cases *cases.Cases `yaml:"cases"`
}

// Service dispatches incoming values through its cases.
type Service struct {
	Verbose bool

	registry *notation.Registry
	cs       *cases.Cases

	// journal is optional.
	journal *Journal
}

// NewService builds families, parses patterns, and compiles handler
// sources.
func NewService(ctx context.Context, cfg *Config, interpreters map[string]cases.Interpreter) (*Service, error) {
	if cfg.Cases == nil {
		return nil, fmt.Errorf("config has no cases")
	}

	r, err := notation.DefineFamilies(cfg.Families)
	if err != nil {
		return nil, err
	}

	cs := cfg.Cases
	cs.PatternParser = r.FromTree
	if err := cs.Compile(ctx, interpreters, false); err != nil {
		return nil, err
	}

	return &Service{
		registry: r,
		cs:       cs,
	}, nil
}

func (s *Service) logf(format string, args ...interface{}) {
	if s.Verbose {
		log.Printf(format, args...)
	}
}

// Process dispatches one JSON-encoded value and returns the
// JSON-encoded response.
//
// The response is {"result":...} on success and {"error":...}
// otherwise.  Results that are captures or instances are written as
// plain trees.
func (s *Service) Process(ctx context.Context, message []byte) []byte {
	var tree interface{}
	if err := json.Unmarshal(message, &tree); err != nil {
		return s.complain(fmt.Errorf("can't parse: %v", err))
	}

	value, err := s.registry.FromTree(tree)
	if err != nil {
		return s.complain(err)
	}

	s.logf("matchd dispatching %s", message)

	got, err := s.cs.Dispatch(ctx, value)

	if s.journal != nil {
		if jerr := s.journal.Record(s.cs.Name, message, got, err); jerr != nil {
			log.Printf("matchd journal error %v", jerr)
		}
	}

	if err != nil {
		return s.complain(err)
	}

	if c, is := got.(*match.Captured); is {
		got = c.Map()
	}

	js, err := json.Marshal(map[string]interface{}{
		"result": notation.ToTree(got),
	})
	if err != nil {
		return s.complain(err)
	}
	return js
}

func (s *Service) complain(err error) []byte {
	js, merr := json.Marshal(map[string]interface{}{
		"error": err.Error(),
	})
	if merr != nil {
		return []byte(`{"error":"internal"}`)
	}
	return js
}
