package modules

import (
	"context"

	"github.com/hyeon/floe/internal/catalog"
	"github.com/hyeon/floe/internal/eval"
)

// ConditionalHandler evaluates the configured condition against the "value"
// input and emits the value on exactly one of its two output handles. The
// engine treats the unemitted handle as a dead branch and skips modules fed
// only through it.
type ConditionalHandler struct{}

func (h *ConditionalHandler) Type() string { return catalog.TypeConditional }

func (h *ConditionalHandler) Execute(_ context.Context, cfg map[string]any, inputs map[string]any) (map[string]any, error) {
	value := inputs["value"]
	chosen, err := eval.Condition(cfgString(cfg, "condition"), map[string]any{"value": value})
	if err != nil {
		return nil, err
	}
	if chosen {
		return map[string]any{"true": value}, nil
	}
	return map[string]any{"false": value}, nil
}

// TransformHandler applies the configured expression to the "input" input
// and emits the result as "output". The input is bound as both "input" and
// "value" for expression convenience.
type TransformHandler struct{}

func (h *TransformHandler) Type() string { return catalog.TypeTransform }

func (h *TransformHandler) Execute(_ context.Context, cfg map[string]any, inputs map[string]any) (map[string]any, error) {
	in := inputs["input"]
	out, err := eval.Run(cfgString(cfg, "expression"), map[string]any{
		"input": in,
		"value": in,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"output": out}, nil
}
