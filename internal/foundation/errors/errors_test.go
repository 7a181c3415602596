package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "docpost.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		file, exists := err.Context().GetString("file")
		if !exists || file != "docpost.yaml" {
			t.Errorf("expected context file=docpost.yaml, got %v", file)
		}
	})

	t.Run("Message includes sorted context and cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := WrapError(cause, CategoryTransform, "transform failed").
			WithContext("transform", "copy_button").
			WithContext("page", "guide/index.html").
			Build()

		want := "[transform:error] transform failed (page=guide/index.html, transform=copy_button): boom"
		if err.Error() != want {
			t.Errorf("got %q, want %q", err.Error(), want)
		}
		if !errors.Is(err, cause) {
			t.Error("expected cause to be reachable through errors.Is")
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := IndexError("write failed").Build()
		wrapped := fmt.Errorf("site build: %w", inner)

		if !IsClassified(wrapped) {
			t.Fatal("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryIndex) {
			t.Error("expected index category")
		}
		if !inner.CanRetry() {
			t.Error("index errors should be retryable by a later signal")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("unclassified errors default to internal")
		}
	})

	t.Run("WithContext does not mutate the receiver", func(t *testing.T) {
		base := ParseError("parse failed").Build()
		withPage := base.WithContext("page", "a.html")

		if _, ok := base.Context().Get("page"); ok {
			t.Error("receiver context was mutated")
		}
		if v, _ := withPage.Context().GetString("page"); v != "a.html" {
			t.Errorf("expected page context, got %q", v)
		}
	})
}

func TestContextString(t *testing.T) {
	inner := TransformError("boom").WithContext("page", "x/index.html").Build()
	outer := WrapError(inner, CategoryRender, "page failed").Build()

	page, ok := ContextString(fmt.Errorf("wrap: %w", outer), "page")
	if !ok || page != "x/index.html" {
		t.Errorf("expected page from inner error, got %q (%v)", page, ok)
	}
	if _, ok := ContextString(errors.New("plain"), "page"); ok {
		t.Error("plain errors carry no context")
	}
}

func TestErrorContextMerge(t *testing.T) {
	a := ErrorContext{"x": 1, "y": 2}
	b := ErrorContext{"y": 3}
	m := a.Merge(b)
	if m["x"] != 1 || m["y"] != 3 {
		t.Errorf("unexpected merge result: %v", m)
	}
	if a["y"] != 2 {
		t.Error("merge mutated the receiver")
	}
}
