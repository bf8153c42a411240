package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/varmint/varmint/adt"
	"github.com/varmint/varmint/interpreters"
	. "github.com/varmint/varmint/util/testutil"

	"gopkg.in/yaml.v2"
)

var testConfig = `
doc: Shape area service
families:
  - name: Shape
    variants:
      - name: Circle
        fields:
          - name: radius
            type: number
      - name: Rect
        fields:
          - name: width
            type: number
          - name: height
            type: number
cases:
  name: area
  cases:
    - name: circle
      pattern:
        $new: Shape/Circle
        radius: "?r"
      handler:
        interpreter: goja
        source: |
          return 3.14159 * r * r;
    - name: rect
      pattern:
        $new: Shape/Rect
        width: "?w"
        height: "?h"
      handler:
        interpreter: goja
        source: |
          return w * h;
`

func testService(t *testing.T) *Service {
	t.Helper()

	var cfg Config
	if err := yaml.Unmarshal([]byte(testConfig), &cfg); err != nil {
		t.Fatal(err)
	}

	s, err := NewService(context.Background(), &cfg, interpreters.Standard())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func result(t *testing.T, response []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(response, &m); err != nil {
		t.Fatalf("bad response %s: %v", response, err)
	}
	return m
}

func TestProcess(t *testing.T) {
	ctx := context.Background()
	s := testService(t)

	t.Run("rect", func(t *testing.T) {
		m := result(t, s.Process(ctx, []byte(`{"$new":"Shape/Rect","width":3,"height":4}`)))
		if !adt.Equal(m, Dwimjs(`{"result":12}`)) {
			t.Fatal(JS(m))
		}
	})

	t.Run("circle", func(t *testing.T) {
		m := result(t, s.Process(ctx, []byte(`{"$new":"Shape/Circle","radius":2}`)))
		x, is := m["result"].(float64)
		if !is || x < 12.5 || 12.6 < x {
			t.Fatal(JS(m))
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		m := result(t, s.Process(ctx, []byte(`"not a shape"`)))
		e, is := m["error"].(string)
		if !is || e != `no case for "not a shape" in area` {
			t.Fatal(JS(m))
		}
	})

	t.Run("badJSON", func(t *testing.T) {
		m := result(t, s.Process(ctx, []byte(`{`)))
		if _, is := m["error"].(string); !is {
			t.Fatal(m)
		}
	})

	t.Run("badField", func(t *testing.T) {
		m := result(t, s.Process(ctx, []byte(`{"$new":"Shape/Circle","radius":"big"}`)))
		if _, is := m["error"].(string); !is {
			t.Fatal(m)
		}
	})
}

func TestListener(t *testing.T) {
	ctx := context.Background()
	s := testService(t)

	in := bufio.NewReader(strings.NewReader(`# a comment

{"$new":"Shape/Rect","width":3,"height":4}
`))
	var out bytes.Buffer

	if err := s.Listener(ctx, in, &out, nil); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatal(out.String())
	}
	if !adt.Equal(Dwimjs(lines[0]), Dwimjs(`{"result":12}`)) {
		t.Fatal(out.String())
	}
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	s := testService(t)

	dir, err := os.MkdirTemp("", "matchd")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	j := NewJournal(filepath.Join(dir, "journal.db"))
	if err := j.Open(); err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	s.journal = j

	s.Process(ctx, []byte(`{"$new":"Shape/Rect","width":3,"height":4}`))
	s.Process(ctx, []byte(`"not a shape"`))

	entries, err := j.List("area", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatal(entries)
	}
	if entries[0].Result == nil || entries[0].Error != "" {
		t.Fatal(entries[0])
	}
	if entries[1].Error == "" {
		t.Fatal(entries[1])
	}
}
