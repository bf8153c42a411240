package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/varmint/varmint/adt"
	"github.com/varmint/varmint/cases"
	"github.com/varmint/varmint/match"
	"github.com/varmint/varmint/notation"
	"github.com/varmint/varmint/util"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

// InterruptedMessage is the string value of Interrupted.
var InterruptedMessage = "RuntimeError: timeout"

// Interrupted is returned by Exec when execution is cut short by
// context cancellation.
var Interrupted = errors.New(InterruptedMessage)

// IgnoreExit prevents the Goja function "exit" from terminating the
// process.  Halting the process from a handler is occasionally handy
// in tests and utilities.  Maybe.
var IgnoreExit = false

func init() {
	cases.DefaultInterpreters["goja"] = NewInterpreter()
}

// Interpreter implements cases.Interpreter using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Interpreter struct {

	// Testing exposes some runtime capabilities (sleep, exit) that
	// shouldn't be available otherwise.
	Testing bool

	// LibraryProvider resolves library names for require().  When
	// nil, DefaultLibraryProvider is used.
	LibraryProvider func(ctx context.Context, i *Interpreter, name string) (string, error)
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// CompileLibrary checks that a library compiles.
//
// Goja can't currently combine ast.Programs, so the result isn't
// actually used.  At least we learn whether the library parses.
func (i *Interpreter) CompileLibrary(ctx context.Context, name, src string) (interface{}, error) {
	return goja.Compile(name, src, true)
}

// ProvideLibrary resolves the library name into library source.
func (i *Interpreter) ProvideLibrary(ctx context.Context, name string) (string, error) {
	if i.LibraryProvider != nil {
		return i.LibraryProvider(ctx, i, name)
	}
	return DefaultLibraryProvider(ctx, i, name)
}

var DefaultLibraryProvider = MakeFileLibraryProvider(".")

// MakeFileLibraryProvider resolves library names that are URLs with
// "file", "http", or "https" protocols.  File URLs are read relative
// to the given directory.  There's no additional control over the
// HTTP/HTTPS fetching.
func MakeFileLibraryProvider(dir string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		proto, rest, found := strings.Cut(name, "://")
		if !found {
			return "", fmt.Errorf("bad link '%s'", name)
		}
		switch proto {
		case "file":
			bs, err := os.ReadFile(filepath.Join(dir, rest))
			if err != nil {
				return "", err
			}
			return string(bs), nil
		case "http", "https":
			return fetchLibrary(ctx, name)
		default:
			return "", fmt.Errorf("unknown protocol '%s'", proto)
		}
	}
}

func fetchLibrary(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("library fetch status %s %d", resp.Status, resp.StatusCode)
	}
	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// MakeMapLibraryProvider resolves library names from the given map.
func MakeMapLibraryProvider(srcs map[string]string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}

// wrapSrc makes handler source into an IIFE so that "return" works at
// the top level of handler code.
func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// parseSource pulls "code" and optional "requires" out of a map-style
// handler source.
func parseSource(m map[string]interface{}) (code string, libs []string, err error) {
	switch c := m["code"].(type) {
	case string:
		code = c
	default:
		return "", nil, errors.New("bad Goja handler code")
	}

	switch r := m["requires"].(type) {
	case nil:
	case string:
		libs = []string{r}
	case []string:
		libs = r
	case []interface{}:
		for _, x := range r {
			s, is := x.(string)
			if !is {
				return "", nil, errors.New("bad library")
			}
			libs = append(libs, s)
		}
	default:
		return "", nil, fmt.Errorf("bad requires (%T)", r)
	}

	return code, libs, nil
}

// AsSource accepts a bare code string or a map with "code" and
// optional "requires" properties.
//
// The map[interface{}]interface{} case supports the YAML parser
// https://github.com/go-yaml/yaml, which returns maps of that type.
func AsSource(src interface{}) (code string, libs []string, err error) {
	switch vv := src.(type) {
	case string:
		return vv, nil, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			s, is := k.(string)
			if !is {
				return "", nil, fmt.Errorf("bad src key (%T)", k)
			}
			m[s] = v
		}
		return parseSource(m)
	case map[string]interface{}:
		return parseSource(vv)
	default:
		return "", nil, fmt.Errorf("bad Goja source (%T)", src)
	}
}

// Compile resolves any required libraries and calls goja.Compile.
//
// Can block if the library provider blocks to fetch external
// libraries.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	code, libs, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	var full strings.Builder
	for _, lib := range libs {
		libSrc, err := i.ProvideLibrary(ctx, lib)
		if err != nil {
			return nil, err
		}
		full.WriteString(libSrc)
		full.WriteString("\n")
	}
	full.WriteString(wrapSrc(code))

	obj, err := goja.Compile("", full.String(), true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + full.String())
	}

	return obj, nil
}

// exported unwraps a goja.Value so utilities can see plain Go data.
func exported(x interface{}) interface{} {
	if v, is := x.(goja.Value); is {
		return v.Export()
	}
	return x
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// Exec implements the cases.Interpreter method of the same name.
//
// The following properties are available from the runtime at _.
//
// These are most important:
//
//	value: the dispatched value (instances appear as $new trees).
//	captured: the map of captures from the pattern that matched.
//	out(x): add x to the results to return.
//
// Each capture is also set as a top-level variable of the same name.
//
// Some useful utilities:
//
//	match(pat, val): execute the pattern matcher; gives the
//	  captures or null.
//	render(x): the canonical rendering of the given value.
//	gensym(): generate a random string.
//	esc(s): URL query-escape the given string.
//	cronNext(expr): the next time matching the given cron
//	  expression.
//	log(x): log x as JSON.
//
// For testing only:
//
//	sleep(ms): sleep for the given number of milliseconds.
//	exit(code, msg): terminate the process after printing the
//	  given message.
//
// The Testing flag must be set to see sleep() and exit().
//
// If out() was called, Exec returns the accumulated results as a
// slice.  Otherwise Exec returns the value of the last expression.
func (i *Interpreter) Exec(ctx context.Context, value interface{}, captured *match.Captured, src interface{}, compiled interface{}) (interface{}, error) {
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return nil, err
		}
	}
	p, is := compiled.(*goja.Program)
	if !is {
		return nil, fmt.Errorf("Goja bad compilation: %T %#v", compiled, compiled)
	}

	jsValue, err := canonicalize(notation.ToTree(value))
	if err != nil {
		return nil, err
	}

	env := map[string]interface{}{
		"ctx":   ctx,
		"value": jsValue,
	}

	o := goja.New()

	o.Set("_", env)

	caps := map[string]interface{}{}
	if captured != nil {
		for _, name := range captured.Names() {
			x, _ := captured.Get(name)
			jsx, err := canonicalize(notation.ToTree(x))
			if err != nil {
				return nil, err
			}
			caps[name] = jsx
			o.Set(name, jsx)
		}
	}
	env["captured"] = caps

	if i.Testing {
		o.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	env["gensym"] = func() interface{} {
		return util.Gensym(32)
	}

	env["cronNext"] = func(x interface{}) interface{} {
		expr, is := exported(x).(string)
		if !is {
			protest(o, "not a string")
		}
		c, err := cronexpr.Parse(expr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	env["esc"] = func(x interface{}) interface{} {
		s, is := exported(x).(string)
		if !is {
			protest(o, "not a string")
		}
		return url.QueryEscape(s)
	}

	if i.Testing {
		env["exit"] = func(n interface{}, msg interface{}) interface{} {
			s, is := exported(msg).(string)
			if !is {
				protest(o, "not a string")
			}
			code, is := exported(n).(int64)
			if !is {
				protest(o, fmt.Sprintf("a %T is not an int64", exported(n)))
			}
			log.Println(s)
			if !IgnoreExit {
				os.Exit(int(code))
			}
			return msg
		}
	}

	// "out" adds the given value to the results to return.
	var outs []interface{}
	env["out"] = func(x interface{}) interface{} {
		y, err := canonicalize(exported(x))
		if err != nil {
			// Will end up as a Javascript exception.
			panic(err)
		}
		outs = append(outs, y)
		return y
	}

	env["log"] = func(x interface{}) interface{} {
		y := exported(x)
		js, err := json.Marshal(&y)
		if err != nil {
			log.Println("goja.log (can't marshal: " + err.Error() + ")")
		} else {
			log.Println(string(js))
		}
		return y
	}

	// match invokes the pattern matcher.  Bindings are written as
	// "?name" strings.  Gives the map of captures on success and
	// null on failure.
	env["match"] = func(pat, val goja.Value) interface{} {
		p, err := canonicalize(pat.Export())
		if err != nil {
			panic(err)
		}
		if p, err = match.FromTree(p); err != nil {
			panic(err)
		}

		v, err := canonicalize(val.Export())
		if err != nil {
			panic(err)
		}

		c, err := match.Match(p, v)
		if err != nil {
			return nil
		}

		x, err := canonicalize(c.Map())
		if err != nil {
			panic(err)
		}

		return x
	}

	env["render"] = func(x interface{}) interface{} {
		return adt.Render(exported(x))
	}

	// Interrupt the runtime when the context is canceled, and make
	// sure this goroutine goes away as soon as Exec is done.
	ictx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ictx.Done()
		// If cancel() fired after RunProgram returned, this
		// interrupt is never observed, which is what we want.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	if 0 < len(outs) {
		return outs, nil
	}

	x := v.Export()
	if x == nil {
		return nil, nil
	}
	return canonicalize(x)
}

// canonicalize converts via JSON so that results are plain trees.
func canonicalize(x interface{}) (interface{}, error) {
	js, err := json.Marshal(&x)
	if err != nil {
		return nil, err
	}
	var y interface{}
	if err = json.Unmarshal(js, &y); err != nil {
		return nil, err
	}
	return y, nil
}
