// Package bigtext provides the text operation service implementation
package bigtext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/shivavenkatesh/bigtext/internal/cache"
	"github.com/shivavenkatesh/bigtext/internal/chunking"
	"github.com/shivavenkatesh/bigtext/internal/command"
	"github.com/shivavenkatesh/bigtext/internal/fault"
	"github.com/shivavenkatesh/bigtext/internal/store"
	"github.com/shivavenkatesh/bigtext/internal/tempfile"
	"github.com/shivavenkatesh/bigtext/pkg/types"

	"github.com/google/uuid"
)

// serviceImpl implements the Service interface
type serviceImpl struct {
	store   store.Store // nil disables the journal
	lengths *cache.LengthCache
	config  Config
	logger  *slog.Logger
}

// NewService creates a new text service. st may be nil.
func NewService(st store.Store, cfg Config, logger *slog.Logger) Service {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunking.DefaultChunkSize
	}
	if cfg.DefaultEncoding == "" {
		cfg.DefaultEncoding = chunking.DefaultEncoding
	}
	if cfg.LengthCacheSize < 0 {
		cfg.LengthCacheSize = 0
	}
	if cfg.Namer == nil {
		cfg.Namer = tempfile.UniqueIn(cfg.OutputDir)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		store:   st,
		lengths: cache.NewLengthCache(cfg.LengthCacheSize),
		config:  cfg,
		logger:  logger,
	}
}

// outcome is what a finished operation produced
type outcome struct {
	outputs []string
	result  string
}

// run resolves the source, executes fn, discards partial outputs on failure
// and journals the run
func (s *serviceImpl) run(ctx context.Context, op types.Op, src types.Source, params map[string]string,
	fn func(r *chunking.Reader) (outcome, error)) (outcome, error) {
	start := time.Now()
	src = s.withDefaults(src)

	var out outcome
	r, err := s.reader(src)
	if err == nil {
		out, err = fn(r)
	}
	if err != nil {
		discard(out.outputs)
		out.outputs = nil
	}

	s.record(ctx, op, src, params, time.Since(start), out, err)
	if err != nil {
		return out, fmt.Errorf("%s failed: %w", op, err)
	}
	return out, nil
}

func (s *serviceImpl) withDefaults(src types.Source) types.Source {
	if src.Encoding == "" {
		src.Encoding = s.config.DefaultEncoding
	}
	return src
}

func (s *serviceImpl) reader(src types.Source) (*chunking.Reader, error) {
	if src.Path == "" {
		return nil, fault.Invalid("source", "path is required")
	}
	return chunking.NewReader(s.withDefaults(src), s.config.ChunkSize)
}

func (s *serviceImpl) output(r *chunking.Reader) command.Output {
	return command.Output{
		Alloc:    s.config.Namer(r.Source().Path),
		Encoding: r.Encoding(),
	}
}

// execute runs a writing command and returns its outputs
func execute(r *chunking.Reader, c command.Command) (outcome, error) {
	err := command.Run(r, c)
	return outcome{outputs: c.Outputs()}, err
}

func (s *serviceImpl) record(ctx context.Context, op types.Op, src types.Source, params map[string]string,
	elapsed time.Duration, out outcome, err error) {
	attrs := []any{"op", op, "source", src.Path, "duration", elapsed}
	if err != nil {
		s.logger.Debug("operation failed", append(attrs, "error", err)...)
	} else {
		s.logger.Debug("operation finished", append(attrs, "outputs", out.outputs, "result", out.result)...)
	}

	if s.store == nil {
		return
	}

	run := &types.Run{
		ID:        uuid.New().String(),
		Op:        op,
		Source:    src,
		Params:    params,
		Outputs:   out.outputs,
		Result:    out.result,
		Duration:  elapsed,
		CreatedAt: time.Now(),
	}
	if err != nil {
		run.Error = err.Error()
	}
	if jerr := s.store.RecordRun(ctx, run); jerr != nil {
		s.logger.Warn("failed to journal run", "op", op, "error", jerr)
	}
}

// discard removes the outputs of a failed operation; their content is undefined
func discard(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}

// length returns the character count of r's source, from the in-memory
// cache, the persisted cache, or a counting pass, in that order
func (s *serviceImpl) length(ctx context.Context, r *chunking.Reader, noCRLF bool) (int64, error) {
	fp, err := cache.FingerprintOf(r.Source(), noCRLF)
	if err != nil {
		return 0, err
	}
	if n, ok := s.lengths.Get(fp); ok {
		return n, nil
	}

	key := fp.Key()
	if s.store != nil {
		rec, err := s.store.LookupLength(ctx, key)
		switch {
		case err == nil:
			s.lengths.Put(fp, rec.Chars)
			return rec.Chars, nil
		case !errors.Is(err, store.ErrNotFound):
			s.logger.Warn("failed to read cached length", "source", fp.Path, "error", err)
		}
	}

	c := command.NewLength()
	if noCRLF {
		c = command.NewLengthNoCRLF()
	}
	if err := command.Run(r, c); err != nil {
		return 0, err
	}
	n := c.Result()

	s.lengths.Put(fp, n)
	if s.store != nil {
		rec := &types.LengthRecord{Key: key, Path: fp.Path, Encoding: fp.Encoding, NoCRLF: noCRLF, Chars: n}
		if err := s.store.SaveLength(ctx, rec); err != nil {
			s.logger.Warn("failed to persist length", "source", fp.Path, "error", err)
		}
	}
	return n, nil
}

// Length counts the characters of a source
func (s *serviceImpl) Length(ctx context.Context, req types.LengthRequest) (int64, error) {
	op := types.OpLength
	if req.NoCRLF {
		op = types.OpLengthNoCRLF
	}

	var n int64
	_, err := s.run(ctx, op, req.Source, nil, func(r *chunking.Reader) (outcome, error) {
		var err error
		n, err = s.length(ctx, r, req.NoCRLF)
		return outcome{result: strconv.FormatInt(n, 10)}, err
	})
	return n, err
}

// IndexOf returns the index of the first occurrence of req.Pattern at or after req.From
func (s *serviceImpl) IndexOf(ctx context.Context, req types.IndexRequest) (int64, error) {
	params := map[string]string{
		"pattern": req.Pattern,
		"from":    strconv.FormatInt(req.From, 10),
	}

	index := int64(-1)
	_, err := s.run(ctx, types.OpIndexOf, req.Source, params, func(r *chunking.Reader) (outcome, error) {
		c := command.NewIndexOf(req.Pattern, req.From)
		if err := command.Run(r, c); err != nil {
			return outcome{}, err
		}
		index = c.Result()
		return outcome{result: strconv.FormatInt(index, 10)}, nil
	})
	if err != nil {
		return -1, err
	}
	return index, nil
}

// Contains reports whether req.Pattern occurs at or after req.From
func (s *serviceImpl) Contains(ctx context.Context, req types.IndexRequest) (bool, error) {
	i, err := s.IndexOf(ctx, req)
	return i >= 0, err
}

// Replace writes a copy with occurrences of req.Old replaced by req.New
func (s *serviceImpl) Replace(ctx context.Context, req types.ReplaceRequest) (*types.OutputResponse, error) {
	op := types.OpReplace
	if req.First {
		op = types.OpReplaceFirst
	}
	params := map[string]string{"old": req.Old, "new": req.New}

	out, err := s.run(ctx, op, req.Source, params, func(r *chunking.Reader) (outcome, error) {
		newReplace := command.NewReplace
		if req.First {
			newReplace = command.NewReplaceFirst
		}
		c, err := newReplace(s.output(r), req.Old, req.New)
		if err != nil {
			return outcome{}, err
		}
		return execute(r, c)
	})
	return response(out, err)
}

// Split writes the text between separators to numbered files
func (s *serviceImpl) Split(ctx context.Context, req types.SplitRequest) (*types.OutputResponse, error) {
	params := map[string]string{
		"separator": req.Separator,
		"limit":     strconv.Itoa(req.Limit),
	}

	out, err := s.run(ctx, types.OpSplit, req.Source, params, func(r *chunking.Reader) (outcome, error) {
		c, err := command.NewSplit(s.output(r), req.Separator, req.Limit)
		if err != nil {
			return outcome{}, err
		}
		return execute(r, c)
	})
	return response(out, err)
}

// Join writes the source followed by each part, separated by req.Delimiter
func (s *serviceImpl) Join(ctx context.Context, req types.JoinRequest) (*types.OutputResponse, error) {
	params := map[string]string{
		"delimiter": req.Delimiter,
		"parts":     strconv.Itoa(len(req.Parts)),
	}

	out, err := s.run(ctx, types.OpJoin, req.Source, params, func(r *chunking.Reader) (outcome, error) {
		parts := make([]command.Part, 0, len(req.Parts))
		for _, p := range req.Parts {
			if p.File == nil {
				parts = append(parts, command.Part{Text: p.Text})
				continue
			}
			fr, err := s.reader(*p.File)
			if err != nil {
				return outcome{}, err
			}
			parts = append(parts, command.Part{File: fr})
		}

		c, err := command.NewJoin(s.output(r), req.Delimiter, parts)
		if err != nil {
			return outcome{}, err
		}
		return execute(r, c)
	})
	return response(out, err)
}

// Insert writes a copy with req.Text or req.File inserted at req.Offset
func (s *serviceImpl) Insert(ctx context.Context, req types.InsertRequest) (*types.OutputResponse, error) {
	op := types.OpInsertString
	params := map[string]string{"offset": strconv.FormatInt(req.Offset, 10)}
	if req.File != nil {
		op = types.OpInsertFile
		params["file"] = req.File.Path
	} else {
		params["text"] = req.Text
	}

	out, err := s.run(ctx, op, req.Source, params, func(r *chunking.Reader) (outcome, error) {
		if req.Offset < 0 {
			return outcome{}, fault.Invalid("insert", "negative offset %d", req.Offset)
		}
		n, err := s.length(ctx, r, false)
		if err != nil {
			return outcome{}, err
		}
		if req.Offset > n {
			return outcome{}, fault.OutOfRange("insert", req.Offset, n)
		}

		var c *command.Insert
		if req.File != nil {
			fr, ferr := s.reader(*req.File)
			if ferr != nil {
				return outcome{}, ferr
			}
			c, err = command.NewInsertFile(s.output(r), r.ChunkSize(), req.Offset, fr)
		} else {
			c, err = command.NewInsertString(s.output(r), r.ChunkSize(), req.Offset, req.Text)
		}
		if err != nil {
			return outcome{}, err
		}
		return execute(r, c)
	})
	return response(out, err)
}

// ChangeCase writes an upper- or lower-cased copy
func (s *serviceImpl) ChangeCase(ctx context.Context, req types.CaseRequest) (*types.OutputResponse, error) {
	op := types.OpToLower
	if req.Upper {
		op = types.OpToUpper
	}
	locale := req.Locale
	if locale == "" {
		locale = s.config.Locale
	}
	params := map[string]string{"locale": locale}

	out, err := s.run(ctx, op, req.Source, params, func(r *chunking.Reader) (outcome, error) {
		tag, err := command.ParseLocale(locale)
		if err != nil {
			return outcome{}, err
		}

		var c *command.CaseMap
		if req.Upper {
			c, err = command.NewToUpper(s.output(r), tag)
		} else {
			c, err = command.NewToLower(s.output(r), tag)
		}
		if err != nil {
			return outcome{}, err
		}
		return execute(r, c)
	})
	return response(out, err)
}

// Trim writes a copy without leading and trailing whitespace
func (s *serviceImpl) Trim(ctx context.Context, req types.TrimRequest) (*types.OutputResponse, error) {
	op := types.OpTrim
	set := command.TrimSpace
	if req.NoCRLF {
		op = types.OpTrimNoCRLF
		set = command.TrimSpaceCRLF
	}

	out, err := s.run(ctx, op, req.Source, nil, func(r *chunking.Reader) (outcome, error) {
		n, err := s.length(ctx, r, false)
		if err != nil {
			return outcome{}, err
		}
		trailing, err := command.TrailingCount(r, set)
		if err != nil {
			return outcome{}, err
		}

		var c *command.Trim
		if req.NoCRLF {
			c, err = command.NewTrimNoCRLF(s.output(r), n, trailing)
		} else {
			c, err = command.NewTrim(s.output(r), n, trailing)
		}
		if err != nil {
			return outcome{}, err
		}
		return execute(r, c)
	})
	return response(out, err)
}

// Substring writes the characters in [req.Begin, req.End)
func (s *serviceImpl) Substring(ctx context.Context, req types.SubstringRequest) (*types.OutputResponse, error) {
	params := map[string]string{
		"begin": strconv.FormatInt(req.Begin, 10),
		"end":   strconv.FormatInt(req.End, 10),
	}

	out, err := s.run(ctx, types.OpSubstring, req.Source, params, func(r *chunking.Reader) (outcome, error) {
		if req.Begin < 0 || req.End < req.Begin {
			return outcome{}, fault.Invalid("substring", "range [%d, %d)", req.Begin, req.End)
		}
		n, err := s.length(ctx, r, false)
		if err != nil {
			return outcome{}, err
		}
		if req.End > n {
			return outcome{}, fault.OutOfRange("substring", req.End, n)
		}

		c, err := command.NewSubstring(s.output(r), r.ChunkSize(), req.Begin, req.End)
		if err != nil {
			return outcome{}, err
		}
		return execute(r, c)
	})
	return response(out, err)
}

func response(out outcome, err error) (*types.OutputResponse, error) {
	if err != nil {
		return nil, err
	}
	return &types.OutputResponse{Outputs: out.outputs}, nil
}

// Runs lists journaled operations
func (s *serviceImpl) Runs(ctx context.Context, opts store.ListOptions) ([]*types.Run, error) {
	if s.store == nil {
		return nil, ErrNoJournal
	}
	return s.store.ListRuns(ctx, opts)
}

// GetRun retrieves one journaled operation
func (s *serviceImpl) GetRun(ctx context.Context, id string) (*types.Run, error) {
	if s.store == nil {
		return nil, ErrNoJournal
	}
	return s.store.GetRun(ctx, id)
}

// ClearRuns deletes journaled operations; an empty op also forgets lengths
func (s *serviceImpl) ClearRuns(ctx context.Context, op types.Op) (int64, error) {
	if op == "" {
		s.lengths.Forget()
	}
	if s.store == nil {
		return 0, ErrNoJournal
	}

	n, err := s.store.DeleteRuns(ctx, op)
	if err != nil {
		return 0, err
	}
	if op == "" {
		if _, err := s.store.DeleteLengths(ctx); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Stats returns journal statistics, or only cache statistics without a journal
func (s *serviceImpl) Stats(ctx context.Context) (*types.StatsResponse, error) {
	if s.store == nil {
		return &types.StatsResponse{
			RunsByOp:      make(map[string]int),
			CachedLengths: s.lengths.Stats().Entries,
		}, nil
	}
	return s.store.Stats(ctx)
}

// Close releases resources
func (s *serviceImpl) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
