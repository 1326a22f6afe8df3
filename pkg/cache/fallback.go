package cache

// FallbackEntry is one row of the static pattern table consulted when
// neither the ultra-hot slab, the hot map, nor the trie yield a match.
// It exists so the engine always has something plausible to offer on a
// cold cache, not because the table is expected to be a primary source
// of completions.
type FallbackEntry struct {
	Prefix string
	Text   string
}

// seedPatterns is the canonical set of leading-token completions shipped
// with the engine, mirroring the teacher's AddWord bulk-seed approach
// but data-only so it can later move to a loaded table (per DESIGN.md)
// without touching TieredCache's surface.
var seedPatterns = []FallbackEntry{
	{Prefix: "get-", Text: "Get-Process"},
	{Prefix: "get-", Text: "Get-ChildItem"},
	{Prefix: "get-", Text: "Get-Content"},
	{Prefix: "get-", Text: "Get-Item"},
	{Prefix: "get-", Text: "Get-Location"},
	{Prefix: "get-", Text: "Get-Service"},
	{Prefix: "set-", Text: "Set-Location"},
	{Prefix: "set-", Text: "Set-Content"},
	{Prefix: "set-", Text: "Set-Item"},
	{Prefix: "set-", Text: "Set-Variable"},
	{Prefix: "new-", Text: "New-Item"},
	{Prefix: "new-", Text: "New-Object"},
	{Prefix: "remove-", Text: "Remove-Item"},
	{Prefix: "remove-", Text: "Remove-Variable"},
	{Prefix: "test-", Text: "Test-Path"},
	{Prefix: "test-", Text: "Test-Connection"},
	{Prefix: "start-", Text: "Start-Process"},
	{Prefix: "start-", Text: "Start-Service"},
	{Prefix: "stop-", Text: "Stop-Process"},
	{Prefix: "stop-", Text: "Stop-Service"},
	{Prefix: "invoke-", Text: "Invoke-Command"},
	{Prefix: "invoke-", Text: "Invoke-WebRequest"},
	{Prefix: "import-", Text: "Import-Module"},
	{Prefix: "export-", Text: "Export-Csv"},
	{Prefix: "select-", Text: "Select-Object"},
	{Prefix: "where-", Text: "Where-Object"},
	{Prefix: "foreach-", Text: "ForEach-Object"},
	{Prefix: "write-", Text: "Write-Output"},
	{Prefix: "write-", Text: "Write-Host"},
	{Prefix: "g", Text: "Get-"},
	{Prefix: "s", Text: "Set-"},
	{Prefix: "n", Text: "New-"},
	{Prefix: "r", Text: "Remove-"},
	{Prefix: "i", Text: "Invoke-"},
}

// matchFallback returns up to limit texts whose FallbackEntry.Prefix is
// a case-already-normalized prefix match, in table order.
func matchFallback(lowerPrefix string, limit int) []string {
	out := make([]string, 0, limit)
	for _, e := range seedPatterns {
		if len(out) >= limit {
			break
		}
		if len(lowerPrefix) == 0 || hasPrefix(e.Prefix, lowerPrefix) || hasPrefix(lowerPrefix, e.Prefix) {
			out = append(out, e.Text)
		}
	}
	return out
}

func hasPrefix(s, prefix string) bool {
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)] == prefix
}
