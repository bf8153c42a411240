// Package main is a little command-line utility to invoke pattern
// matching.
//
//	varmint -p '{"likes":"?liked"}' -v '{"likes":"tacos"}' -w '{"liked":"tacos"}'
//
// With -f, runs a YAML session file declaring families, cases, and
// tests (see tools.Session).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"runtime"
	"time"

	"github.com/varmint/varmint/adt"
	"github.com/varmint/varmint/interpreters"
	"github.com/varmint/varmint/match"
	"github.com/varmint/varmint/tools"

	"github.com/jsccast/yaml"
)

func main() {

	var (
		patternJS = flag.String("p", "", "pattern in JSON (with ?var notation)")
		valueJS   = flag.String("v", "", "value in JSON")
		wantJS    = flag.String("w", "", "wanted captures in JSON")

		sessionFilename = flag.String("f", "", "filename for YAML session")

		bench = flag.Int("bench", 0, "number of times to run (and report time)")

		timeout = flag.Duration("t", 10*time.Second, "main timeout")
		verbose = flag.Bool("verbose", false, "verbosity")
	)

	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *sessionFilename != "" {
		bs, err := ioutil.ReadFile(*sessionFilename)
		if err != nil {
			log.Fatal(err)
		}

		var s tools.Session
		if err = yaml.Unmarshal(bs, &s); err != nil {
			log.Fatal(err)
		}
		s.Interpreters = interpreters.Standard()
		s.Verbose = *verbose

		if err = s.Run(ctx); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("happy\n")
		return
	}

	var (
		pattern interface{}
		value   interface{}
		want    map[string]interface{}
		wanted  bool
	)

	if *patternJS != "" {
		if err := json.Unmarshal([]byte(*patternJS), &pattern); err != nil {
			log.Fatal(err)
		}
		var err error
		if pattern, err = match.FromTree(pattern); err != nil {
			log.Fatal(err)
		}
	}

	if *valueJS != "" {
		if err := json.Unmarshal([]byte(*valueJS), &value); err != nil {
			log.Fatal(err)
		}
	}

	if *wantJS != "" {
		if err := json.Unmarshal([]byte(*wantJS), &want); err != nil {
			log.Fatal(err)
		}
		wanted = true
	}

	if 0 < *bench {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		allocs := stats.TotalAlloc
		then := time.Now()
		for i := 0; i < *bench; i++ {
			match.Match(pattern, value)
		}
		elapsed := time.Now().Sub(then)
		meanNanos := elapsed.Nanoseconds() / int64(*bench)

		runtime.ReadMemStats(&stats)
		allocated := (stats.TotalAlloc - allocs) / uint64(*bench)

		log.Printf("%d iterations, %d mean ns/Match, %d mean bytes allocated per Match",
			*bench, meanNanos, allocated)
	}

	c, err := match.Match(pattern, value)
	if err != nil {
		fmt.Printf("no match: %s\n", err)
		if wanted {
			fmt.Printf("false\n")
		}
		return
	}

	if wanted {
		happy := true
		for name, x := range want {
			got, have := c.Get(name)
			if !have || !adt.Equal(got, x) {
				if *verbose {
					fmt.Printf("disagreement at %s: %s != %s\n",
						name, adt.Render(got), adt.Render(x))
				}
				happy = false
			}
		}
		fmt.Printf("%v\n", happy)
		return
	}

	js, err := json.Marshal(c.Map())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s\n", js)
}
