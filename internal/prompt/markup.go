// Copyright (c) 2023-2024, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"regexp"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

var (
	colorMap = map[string]text.Color{
		"bold":      text.Bold,
		"faint":     text.Faint,
		"black":     text.FgBlack,
		"red":       text.FgRed,
		"green":     text.FgGreen,
		"yellow":    text.FgYellow,
		"blue":      text.FgBlue,
		"magenta":   text.FgMagenta,
		"cyan":      text.FgCyan,
		"white":     text.FgWhite,
		"hiblack":   text.FgHiBlack,
		"hired":     text.FgHiRed,
		"higreen":   text.FgHiGreen,
		"hiyellow":  text.FgHiYellow,
		"hiblue":    text.FgHiBlue,
		"himagenta": text.FgHiMagenta,
		"hicyan":    text.FgHiCyan,
		"hiwhite":   text.FgHiWhite,
	}

	// matches a tag pair whose content holds no further tags
	innermostTag = regexp.MustCompile(`\{([A-Za-z]+)\}([^{]*)\{/([A-Za-z]+)\}`)
)

// ColorMarkup replaces tags like {red}text{/red} with terminal colors. Tags
// nest, unknown color names are removed leaving their content.
func ColorMarkup(input string) string {
	result := input

	for {
		next := innermostTag.ReplaceAllStringFunc(result, func(m string) string {
			parts := innermostTag.FindStringSubmatch(m)
			if parts[1] != parts[3] {
				return m
			}

			color, ok := colorMap[strings.ToLower(parts[1])]
			if !ok {
				return parts[2]
			}

			return text.Colors{color}.Sprint(parts[2])
		})

		if next == result {
			return result
		}
		result = next
	}
}
