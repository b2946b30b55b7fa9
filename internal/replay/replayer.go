package replay

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"locshare/internal/decode"
	"locshare/internal/storage"
)

// Outcome is the decode result of one captured payload.
type Outcome struct {
	Path        string `json:"path"`
	Seq         uint64 `json:"seq"`
	TsUnix      int64  `json:"ts_unix"`
	Kind        string `json:"kind"`
	SelfPresent bool   `json:"self_present"`
	SharedCount int    `json:"shared_count"`
	Error       string `json:"error,omitempty"`
}

// OK reports whether the capture decoded cleanly.
func (o Outcome) OK() bool { return o.Error == "" }

// Summary aggregates a replay run.
type Summary struct {
	Outcomes []Outcome      `json:"outcomes"`
	Decoded  int            `json:"decoded"`
	Failed   int            `json:"failed"`
	ByKind   map[string]int `json:"by_kind"`
}

// Replayer runs captured payloads back through the decoder in sequence order.
type Replayer struct {
	captures *storage.CaptureManager
}

// NewReplayer creates a replayer over the capture directory.
func NewReplayer(dir string) *Replayer {
	return &Replayer{captures: storage.NewCaptureManager(dir)}
}

// Run decodes every capture. Per-file decode failures are reported in the
// summary; only I/O errors and cancellation abort the run.
func (r *Replayer) Run(ctx context.Context) (Summary, error) {
	files, err := r.captures.List()
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{ByKind: make(map[string]int)}
	for _, cf := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		body, err := os.ReadFile(cf.Path)
		if err != nil {
			return sum, fmt.Errorf("failed to read capture %s: %w", cf.Path, err)
		}

		out := replayOne(cf, body)
		sum.Outcomes = append(sum.Outcomes, out)
		sum.ByKind[out.Kind]++
		if out.OK() {
			sum.Decoded++
		} else {
			sum.Failed++
			slog.Debug("Capture failed to decode",
				slog.Uint64("seq", cf.Seq),
				slog.String("kind", out.Kind),
				slog.String("error", out.Error))
		}
	}

	slog.Info("Replay finished",
		slog.Int("files", len(files)),
		slog.Int("decoded", sum.Decoded),
		slog.Int("failed", sum.Failed))
	return sum, nil
}

func replayOne(cf storage.CaptureFile, body []byte) Outcome {
	out := Outcome{Path: cf.Path, Seq: cf.Seq, TsUnix: cf.TsUnix}

	res, err := decode.DecodePayload(body)
	out.Kind = decode.Kind(err)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.SelfPresent = res.Self != nil
	out.SharedCount = len(res.Shared)
	return out
}
