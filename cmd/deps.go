package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/discrepancy-api/internal/extract"
	"github.com/sells-group/discrepancy-api/internal/store"
)

// env bundles the collaborators that commands share.
type env struct {
	store     store.Store
	extractor extract.Extractor
}

func initEnv() (*env, error) {
	st, err := store.New(cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "cmd: open store")
	}

	ex, err := extract.NewExtractor(cfg.Extractor, cfg.Anthropic, cfg.OCR)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "cmd: build extractor")
	}

	return &env{store: st, extractor: ex}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}
