package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

func TestParse_ValidPost(t *testing.T) {
	raw := []byte(`---
title: Hello World
date: 2021-07-08
description: first post
tags:
  - swift
  - engineering
draft: false
---
# Hello

Body text.
`)

	post, err := Parse("posts/hello/index.md", raw, "hello")
	require.NoError(t, err)
	require.Equal(t, "Hello World", post.Title)
	require.Equal(t, time.Date(2021, 7, 8, 0, 0, 0, 0, time.UTC), post.Date)
	require.Equal(t, "first post", post.Description)
	require.Equal(t, []string{"swift", "engineering"}, post.Tags)
	require.False(t, post.Draft)
	require.Equal(t, "hello", post.Slug)
	require.Contains(t, string(post.Body), "Body text.")
}

func TestParse_ExplicitSlugWins(t *testing.T) {
	raw := []byte("---\ntitle: T\ndate: 2021-07-08\nslug: Custom Slug\n---\nbody\n")

	post, err := Parse("posts/whatever.md", raw, "whatever")
	require.NoError(t, err)
	require.Equal(t, "custom-slug", post.Slug)
}

func TestParse_MissingFrontmatter_IsParseError(t *testing.T) {
	_, err := Parse("posts/x.md", []byte("# no metadata\n"), "x")
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryParse))
}

func TestParse_MissingRequiredFields(t *testing.T) {
	cases := map[string]string{
		"no title": "---\ndate: 2021-07-08\n---\nbody\n",
		"no date":  "---\ntitle: T\n---\nbody\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("posts/x.md", []byte(raw), "x")
			require.Error(t, err)
			require.True(t, berrors.IsCategory(err, berrors.CategoryParse))
		})
	}
}

func TestParse_MalformedDate_IsParseError(t *testing.T) {
	raw := []byte("---\ntitle: T\ndate: not-a-date\n---\nbody\n")

	_, err := Parse("posts/x.md", raw, "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse")
}

func TestParse_MissingClosingDelimiter_IsParseError(t *testing.T) {
	raw := []byte("---\ntitle: T\ndate: 2021-07-08\nbody without closing\n")

	_, err := Parse("posts/x.md", raw, "x")
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryParse))
}

func TestParseDate_AcceptedLayouts(t *testing.T) {
	for _, raw := range []string{"2021-07-08", "2021-07-08T10:30:00Z", "2021-07-08T10:30:00"} {
		_, err := ParseDate(raw)
		require.NoError(t, err, raw)
	}
	_, err := ParseDate("08/07/2021")
	require.Error(t, err)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":        "hello-world",
		"Crème Brûlée!":      "creme-brulee",
		"  spaced   out  ":   "spaced-out",
		"already-slugged":    "already-slugged",
		"Ünïcödé & Symbols?": "unicode-symbols",
		"--- ---":            "",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), in)
	}
}
