// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts blog post bodies from Markdown into HTML
// fragments using goldmark. GitHub-Flavored Markdown is enabled, soft line
// breaks stay soft, and a set of custom node renderers adds the site's
// styling hooks (table wrappers, styled lists, heading anchors, labelled
// code blocks, external link markers and captioned images).
package markdown

import (
	"bytes"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Options configures a Renderer.
type Options struct {
	// SiteDomain is the site's own host (e.g. "example.com"). Absolute
	// links to it or its subdomains are rendered as internal links.
	SiteDomain string
}

// Renderer turns Markdown into HTML. The goldmark configuration is fixed at
// construction; a Renderer is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a Renderer with GFM extensions and the custom node renderers.
// Raw HTML in the source is omitted from the output.
func New(opts Options) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, autolinks, task lists
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(headingIDTransformer{}, 100),
			),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(
				util.Prioritized(newNodeRenderer(opts.SiteDomain), 100),
			),
		),
	)
	return &Renderer{md: md}
}

// ToHTML converts Markdown source into an HTML fragment. Empty input yields
// an empty string. It never fails: conversion errors are logged and
// produce an empty fragment.
func (r *Renderer) ToHTML(source string) (out string) {
	if source == "" {
		return ""
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("markdown render panic", "error", rec)
			out = ""
		}
	}()

	// Heading ids are tracked per document so duplicates get suffixes.
	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf, parser.WithContext(ctx)); err != nil {
		slog.Error("markdown render failed", "error", err)
		return ""
	}
	return buf.String()
}
