// Package intake decodes characteristics snapshots from JSON. Every
// document is checked against an embedded JSON Schema before it reaches
// the engine.
package intake

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// ErrInvalidSnapshot is returned for documents that fail decoding or
// validation.
var ErrInvalidSnapshot = errors.New("intake: invalid snapshot")

//go:embed snapshot.schema.json
var schemaJSON string

const schemaURL = "https://portail-rse.beta.gouv.fr/schemas/caracteristiques.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("intake schema load failed: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("intake schema compile failed: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// wire overrides the closing date so that plain dates are accepted.
type wire struct {
	*entreprise.Caracteristiques
	DateClotureExercice *string `json:"date_cloture_exercice,omitempty"`
}

// Decode validates and decodes one JSON snapshot.
func Decode(data []byte) (*entreprise.Caracteristiques, error) {
	s, err := schema()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	c := &entreprise.Caracteristiques{}
	w := wire{Caracteristiques: c}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if w.DateClotureExercice != nil {
		d, err := parseDate(*w.DateClotureExercice)
		if err != nil {
			return nil, fmt.Errorf("%w: date_cloture_exercice: %v", ErrInvalidSnapshot, err)
		}
		c.DateClotureExercice = &d
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return c, nil
}

func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}

// DecodeAll reads either a JSON array of snapshots or newline-delimited
// JSON. Errors name the offending document, counted from 1.
func DecodeAll(r io.Reader) ([]*entreprise.Caracteristiques, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var raws []json.RawMessage
	if first == '[' {
		if err := json.NewDecoder(br).Decode(&raws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	} else {
		dec := json.NewDecoder(br)
		for {
			var raw json.RawMessage
			err := dec.Decode(&raw)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("%w: document %d: %v", ErrInvalidSnapshot, len(raws)+1, err)
			}
			raws = append(raws, raw)
		}
	}

	out := make([]*entreprise.Caracteristiques, 0, len(raws))
	for i, raw := range raws {
		c, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsRune([]byte(" \t\r\n"), rune(b)) {
			return b, br.UnreadByte()
		}
	}
}
