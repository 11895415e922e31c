package config

const defaultPreamble = `
    \hypersetup{
    colorlinks = true,
    linkcolor = [rgb]{0,0.46,0.63},
    anchorcolor = [rgb]{0,0.46,0.63},
    citecolor = blue,
    filecolor = [rgb]{0,0.46,0.63},
    pagecolor = [rgb]{0,0.46,0.63},
    urlcolor = [rgb]{0,0.46,0.63}
    }
`

// Defaults returns the settings of the GeoGig man page build.
func Defaults() Settings {
	return Settings{
		Project:      "GeoGig",
		Manual:       "Man Pages",
		Copyright:    "OpenGeo <http://opengeo.org>",
		Version:      "1.0",
		Release:      "2.0-SNAPSHOT",
		MasterDoc:    "geogig",
		SourceSuffix: ".rst",
		TodayFmt:     "%B %d, %Y",
		ExcludeTrees: []string{},

		HTMLTheme:          "geogig_docs",
		HTMLThemePath:      []string{"../../themes"},
		HTMLLastUpdatedFmt: "%b %d, %Y",
		HTMLUseModindex:    false,
		HTMLUseIndex:       true,
		HTMLHelpBasename:   "GeoGigUserManual",

		LaTeXDocuments: []LaTeXDocument{{
			StartDoc:   "index",
			TargetName: "GeoGigUserManual.tex",
			Title:      "GeoGig User Manual",
			Author:     "GeoGig",
			DocClass:   "manual",
		}},
		LaTeXLogo: "../../themes/geogig/static/GeoGig.png",
		LaTeXElements: LaTeXElements{
			FontPkg:  `\usepackage{palatino}`,
			Fncychap: `\usepackage[Sonny]{fncychap}`,
			Preamble: defaultPreamble,
		},
	}
}
