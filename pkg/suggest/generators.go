package suggest

import (
	"strings"
	"unicode"
)

// generate produces shape-based completions when neither the trie nor
// the cache has anything for fragment: a cold-start floor so the engine
// never returns nothing for a recognizable shape of input. The shape
// predicates and their priority order are fixed by spec.md §4.3 step 4.
func generate(fragment string, k int) []string {
	switch {
	case beginsWithUppercaseDash(fragment):
		return take(commandNames, fragment, k)
	case strings.HasPrefix(fragment, "--"):
		return take(longFlags, fragment, k)
	case strings.HasPrefix(fragment, "-"):
		return take(shortFlags, fragment, k)
	case strings.HasPrefix(fragment, "$"):
		return take(variables, fragment, k)
	case strings.ContainsAny(fragment, "/\\"):
		return take(pathHints, fragment, k)
	case len(fragment) == 1:
		return take(singleLetterExpansions[strings.ToLower(fragment)], fragment, k)
	default:
		return nil
	}
}

// beginsWithUppercaseDash reports whether fragment opens with an
// uppercase letter and has a hyphen somewhere after it, the shape of a
// PowerShell-style cmdlet verb (e.g. "Get-", "Invoke-").
func beginsWithUppercaseDash(fragment string) bool {
	r := []rune(fragment)
	return len(r) >= 2 && unicode.IsUpper(r[0]) && strings.ContainsRune(string(r[1:]), '-')
}

var commandNames = []string{"Get-ChildItem", "Set-Location", "New-Item", "Remove-Item", "Invoke-Command"}

var longFlags = []string{"--help", "--verbose", "--version", "--force", "--dry-run", "--output"}

var shortFlags = []string{"-Force", "-Verbose", "-WhatIf", "-Recurse", "-Path", "-Name"}

var variables = []string{"$HOME", "$PATH", "$PWD", "$USER", "$?", "$_"}

var pathHints = []string{"./", "../", "~/"}

var singleLetterExpansions = map[string][]string{
	"g": {"Get-", "git"},
	"s": {"Set-", "sudo"},
	"n": {"New-"},
	"r": {"Remove-"},
	"i": {"Invoke-"},
	"l": {"ls"},
	"c": {"cd"},
}

func take(pool []string, fragment string, k int) []string {
	out := make([]string, 0, k)
	for _, p := range pool {
		if len(out) >= k {
			break
		}
		out = append(out, p)
	}
	_ = fragment
	return out
}
