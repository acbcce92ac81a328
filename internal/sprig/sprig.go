// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package sprig provides the template functions available to every template,
// the Sprig library plus a few helpers for naming things in web projects.
package sprig

import (
	"reflect"
	"regexp"
	"strings"
	"text/template"
	"unicode"

	"github.com/CloudyKit/jet/v6"
	"github.com/Masterminds/sprig/v3"
)

var wordSplit = regexp.MustCompile(`[^A-Za-z0-9]+`)

// FuncMap is the Go template function map
func FuncMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()

	funcs["uuidv4"] = uuidv4
	funcs["randHex"] = randHex
	funcs["pascal"] = Pascal
	funcs["kebab"] = Kebab
	funcs["titleWords"] = TitleWords

	return funcs
}

// JetFuncMap is the naming helpers as Jet functions
func JetFuncMap() map[string]jet.Func {
	str := func(name string, f func(string) string) jet.Func {
		return func(args jet.Arguments) reflect.Value {
			args.RequireNumOfArguments(name, 1, 1)

			var in string
			if err := args.ParseInto(&in); err != nil {
				args.Panicf("%s: %v", name, err)
			}

			return reflect.ValueOf(f(in))
		}
	}

	return map[string]jet.Func{
		"pascal":     str("pascal", Pascal),
		"kebab":      str("kebab", Kebab),
		"titleWords": str("titleWords", TitleWords),
		"uuidv4": func(args jet.Arguments) reflect.Value {
			args.RequireNumOfArguments("uuidv4", 0, 0)
			return reflect.ValueOf(uuidv4())
		},
	}
}

func words(s string) []string {
	var res []string
	for _, w := range wordSplit.Split(s, -1) {
		if w != "" {
			res = append(res, w)
		}
	}

	return res
}

func upperFirst(w string) string {
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Pascal converts my-feature into MyFeature, suitable for component names
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(upperFirst(w))
	}

	return b.String()
}

// Kebab converts My Feature into my-feature
func Kebab(s string) string {
	return strings.ToLower(strings.Join(words(s), "-"))
}

// TitleWords converts my-feature into My Feature
func TitleWords(s string) string {
	w := words(s)
	for i := range w {
		w[i] = upperFirst(w[i])
	}

	return strings.Join(w, " ")
}
