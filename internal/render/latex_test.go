package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locationtech/geogig-manpages/internal/config"
)

func TestLaTeXManual(t *testing.T) {
	opts := testOptions(t)
	b, err := NewLaTeX(opts)
	require.NoError(t, err)

	outputs, err := b.Finish(testPages(t, opts.Catalog))
	require.NoError(t, err)
	require.Len(t, outputs, 1, "missing logo is left out")
	assert.Equal(t, "latex/GeoGigUserManual.tex", outputs[0].Path)

	tex := string(outputs[0].Data)
	for _, want := range []string{
		`\documentclass[letterpaper,10pt,english]{report}`,
		"\\usepackage{palatino}\n\\usepackage[Sonny]{fncychap}\n",
		`\hypersetup{`,
		`\title{GeoGig User Manual}`,
		`\author{GeoGig}`,
		`\date{October 14, 2026\\Release 2.0}`,
		`\chapter{geogig-init}\label{geogig-init}`,
		`\emph{Create and initialize a new geogig repository}`,
		`\section*{SYNOPSIS}`,
		`Creates a repository in the \texttt{.geogig} directory.`,
		"\\begin{verbatim}\n$ geogig init\n.hidden\n\\end{verbatim}",
		`\item[{--help}] Show help for this command.`,
		`\hyperref[geogig-clone]{\emph{geogig-clone}}`,
		`\href{http://geogig.org}{the wiki}`,
		`\textbf{Note:} Repositories are created in place.`,
		`\chapter{geogig-log}\label{geogig-log}`,
		`\end{document}`,
	} {
		assert.Contains(t, tex, want)
	}
	assert.NotContains(t, tex, `\includegraphics{`)
}

func TestLaTeXLogoAndHowto(t *testing.T) {
	opts := testOptions(t)
	require.NoError(t, os.MkdirAll(filepath.Join(opts.BaseDir, "static"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(opts.BaseDir, "static", "GeoGig.png"), []byte("png"), 0o644))
	opts.Settings.LaTeXLogo = "static/GeoGig.png"
	opts.Settings.LaTeXDocuments = []config.LaTeXDocument{{
		StartDoc: "index", TargetName: "quick.tex", Title: "Quick_Start", Author: "GeoGig", DocClass: "howto",
	}}

	b, err := NewLaTeX(opts)
	require.NoError(t, err)
	outputs, err := b.Finish(testPages(t, opts.Catalog))
	require.NoError(t, err)
	files := outputMap(outputs)

	assert.Equal(t, []byte("png"), files["latex/GeoGig.png"])
	tex := string(files["latex/quick.tex"])
	assert.Contains(t, tex, `{article}`)
	assert.Contains(t, tex, `\title{\includegraphics{GeoGig.png}\\[1em]Quick\_Start}`)
	assert.Contains(t, tex, `\section{geogig-init}`)
	assert.Contains(t, tex, `\subsection*{SYNOPSIS}`)
}

func TestLaTeXUnknownClass(t *testing.T) {
	opts := testOptions(t)
	opts.Settings.LaTeXDocuments[0].DocClass = "memoir"

	b, err := NewLaTeX(opts)
	require.NoError(t, err)
	_, err = b.Finish(nil)
	require.Error(t, err)
}

func TestEscapeTeX(t *testing.T) {
	tests := map[string]string{
		`100% of $x`:  `100\% of \$x`,
		`a_b & {c}`:   `a\_b \& \{c\}`,
		`C:\dir ~ ^`:  `C:\textbackslash{}dir \textasciitilde{} \textasciicircum{}`,
		`<directory>`: `\textless{}directory\textgreater{}`,
		`#1`:          `\#1`,
	}
	for input, want := range tests {
		assert.Equal(t, want, escapeTeX(input), input)
	}
}
