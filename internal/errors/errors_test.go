package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildError_ErrorString(t *testing.T) {
	err := New(CategoryParse, SeverityError, "malformed post")
	require.Equal(t, "parse (error): malformed post", err.Error())

	wrapped := Wrap(fmt.Errorf("boom"), CategoryWrite, SeverityFatal, "output write failed")
	require.Equal(t, "write (fatal): output write failed: boom", wrapped.Error())
}

func TestBuildError_ErrorRendersContext(t *testing.T) {
	err := ParseError("posts/broken.md", fmt.Errorf("missing required field: title"))
	require.Equal(t,
		"parse (error): malformed post [path=posts/broken.md]: missing required field: title",
		err.Error())

	coll := SlugCollision("shared", "posts/one.md", "posts/two.md")
	require.Contains(t, coll.Error(), "posts/one.md")
	require.Contains(t, coll.Error(), "posts/two.md")
	require.Contains(t, coll.Error(), "slug=shared")
}

func TestBuildError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := WriteFailed("public/index.html", cause)
	require.True(t, errors.Is(err, cause))
}

func TestIsCategory(t *testing.T) {
	err := ParseError("posts/broken.md", fmt.Errorf("missing title"))
	require.True(t, IsCategory(err, CategoryParse))
	require.False(t, IsCategory(err, CategoryRender))
	require.False(t, IsCategory(fmt.Errorf("plain"), CategoryParse))
}

func TestLoadErrors_AggregatesAndNamesFiles(t *testing.T) {
	agg := &LoadErrors{}
	agg.Append(ParseError("posts/a.md", fmt.Errorf("missing title")))
	agg.Append(nil)
	agg.Append(ParseError("posts/b.md", fmt.Errorf("bad date")))

	err := agg.OrNil()
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 error(s)")
	require.Contains(t, err.Error(), "posts/a.md")
	require.Contains(t, err.Error(), "posts/b.md")
}

func TestLoadErrors_OrNilEmpty(t *testing.T) {
	agg := &LoadErrors{}
	require.NoError(t, agg.OrNil())
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)

	require.Equal(t, 0, a.ExitCodeFor(nil))
	require.Equal(t, 2, a.ExitCodeFor(ValidationFailed("page_size", "must be positive")))
	require.Equal(t, 7, a.ExitCodeFor(ConfigNotFound("blogbuilder.yaml")))
	require.Equal(t, 11, a.ExitCodeFor(ParseError("x.md", fmt.Errorf("bad"))))
	require.Equal(t, 11, a.ExitCodeFor(&LoadErrors{Errs: []error{fmt.Errorf("bad")}}))
	require.Equal(t, 12, a.ExitCodeFor(New(CategoryRuntime, SeverityFatal, "watcher died")))
	require.Equal(t, 1, a.ExitCodeFor(fmt.Errorf("plain")))
}

func TestCLIErrorAdapter_FormatExpandsLoadErrors(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	agg := &LoadErrors{}
	agg.Append(ParseError("posts/a.md", fmt.Errorf("missing title")))

	out := a.FormatError(agg)
	require.Contains(t, out, "posts/a.md")
}

func TestCLIErrorAdapter_FormatKeepsContextWithoutVerbose(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)

	out := a.FormatError(ParseError("posts/a.md", fmt.Errorf("missing title")))
	require.Contains(t, out, "posts/a.md")
	require.Contains(t, out, "missing title")

	out = a.FormatError(ValidationFailed("title", "must not be empty"))
	require.Contains(t, out, "title")
	require.Contains(t, out, "must not be empty")
}
