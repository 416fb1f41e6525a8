package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hazyhaar/lexicheck/pkg/lang"
	"github.com/hazyhaar/lexicheck/pkg/match"
	"github.com/hazyhaar/lexicheck/pkg/validate"
)

// cmdCheck validates one answer the way a client app would: locally first,
// then against -endpoint. It prints the Result as JSON and returns the exit
// code (0 accepted, 1 rejected, 2 usage error).
func cmdCheck(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	endpoint := fs.String("endpoint", "", "remote validation URL (empty: local checks only)")
	user := fs.String("user-id", "", "caller identity sent as X-User-ID")
	direction := fs.String("direction", "", "target_to_native or native_to_target")
	target := fs.String("target", "", "target language code")
	native := fs.String("native", "", "native language code")
	word := fs.String("word", "", "target word, for context")
	wordType := fs.String("word-type", "", "noun, verb, phrase, ...")
	timeout := fs.Duration("timeout", validate.DefaultTimeout, "remote round trip timeout")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: lexicheck check [flags] <user answer> <correct answer>")
		return 2
	}

	opts := validate.Options{
		Options: match.Options{
			Direction:      match.ParseDirection(*direction),
			TargetLanguage: lang.MustParse(*target),
			NativeLanguage: lang.MustParse(*native),
		},
		TargetWord: *word,
		WordType:   *wordType,
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	var remote validate.Remote
	if *endpoint != "" {
		var copts []validate.ClientOption
		if *user != "" {
			copts = append(copts, validate.WithHeader("X-User-ID", *user))
		}
		remote = validate.NewClient(*endpoint, copts...)
	}
	svc := validate.NewService(remote, validate.WithLogger(logger))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	start := time.Now()
	res := svc.Validate(ctx, fs.Arg(0), fs.Arg(1), opts)
	logger.Debug("checked", "duration", time.Since(start))

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.Encode(res)
	if res.Accepted {
		return 0
	}
	return 1
}
