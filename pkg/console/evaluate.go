package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itchyny/gojq"

	"github.com/user/log-console-tui/pkg/format"
	"github.com/user/log-console-tui/pkg/logging"
	"github.com/user/log-console-tui/pkg/models"
)

const (
	evalOrigin     = "<eval>"
	evalTimeout    = 2 * time.Second
	evalMaxResults = 100
)

// ErrNoClipboard is reported when copy is evaluated without a clipboard
var ErrNoClipboard = errors.New("clipboard is not available")

// sandbox is the helper context of one evaluation. It is built per call and
// dropped afterwards; helpers only reach the console through it.
type sandbox struct {
	c     *Console
	clear bool
}

func (s *sandbox) options() []gojq.CompilerOption {
	return []gojq.CompilerOption{
		gojq.WithVariables([]string{"$count", "$levels", "$entries"}),
		gojq.WithFunction("copy", 0, 0, func(v interface{}, _ []interface{}) interface{} {
			if s.c.clipboard == nil {
				return ErrNoClipboard
			}
			if err := s.c.clipboard.Copy(format.Indented(v)); err != nil {
				return err
			}
			return v
		}),
		gojq.WithFunction("dir", 0, 0, func(v interface{}, _ []interface{}) interface{} {
			s.c.enqueue(request{Type: models.TypeDir, Args: []interface{}{v}}, s.c.headerFrom(evalOrigin))
			return nil
		}),
		gojq.WithFunction("table", 0, 0, func(v interface{}, _ []interface{}) interface{} {
			s.c.enqueue(request{Type: models.TypeTable, Args: []interface{}{v}}, s.c.headerFrom(evalOrigin))
			return nil
		}),
		gojq.WithFunction("clear", 0, 0, func(v interface{}, _ []interface{}) interface{} {
			s.clear = true
			return nil
		}),
	}
}

// variables exposes the store to expressions in jq's value model
func (s *sandbox) variables() []interface{} {
	c := s.c
	levels := make([]interface{}, len(c.opts.Levels))
	for i, l := range c.opts.Levels {
		levels[i] = string(l)
	}
	entries := make([]interface{}, len(c.entries))
	for i, e := range c.entries {
		entries[i] = map[string]interface{}{
			"id":    int(e.ID),
			"type":  string(e.Type),
			"level": string(e.Level()),
			"text":  e.Text,
			"count": e.Count,
		}
	}
	return []interface{}{len(c.entries), levels, entries}
}

// Evaluate runs a jq expression against the previous result. The input and
// every result are admitted as entries; failures become error entries.
func (c *Console) Evaluate(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.insert(models.TypeInput, []interface{}{code}, true)

	s := &sandbox{c: c}
	results, err := s.run(code)
	if s.clear {
		c.clear(false)
	}
	for _, v := range results {
		c.lastResult = v
		c.insert(models.TypeOutput, []interface{}{v}, true)
	}
	if err != nil {
		logging.Debug("Evaluate", "expression %q failed: %v", code, err)
		c.insert(models.TypeError, []interface{}{err}, true)
	}
}

func (s *sandbox) run(code string) ([]interface{}, error) {
	query, err := gojq.Parse(code)
	if err != nil {
		return nil, err
	}
	compiled, err := gojq.Compile(query, s.options()...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	var results []interface{}
	iter := compiled.RunWithContext(ctx, s.c.lastResult, s.variables()...)
	for {
		v, ok := iter.Next()
		if !ok {
			return results, nil
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				return results, nil
			}
			return results, err
		}
		if len(results) == evalMaxResults {
			return results, fmt.Errorf("more than %d results", evalMaxResults)
		}
		results = append(results, v)
	}
}

// LastResult returns the value of the last successful evaluation
func (c *Console) LastResult() interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}
