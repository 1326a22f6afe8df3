package predict

import "strings"

// exemplars are few-shot command/completion pairs steering the LM
// toward short, shell-plausible continuations rather than prose.
var exemplars = [][2]string{
	{"git com", "git commit -m"},
	{"docker ru", "docker run --rm -it ubuntu"},
	{"kubectl get po", "kubectl get pods -n"},
}

// BuildPrompt assembles the LM prompt from the typed input and the
// working directory, fixed preamble first then structured context
// lines, in the style of a templated prompt builder rather than
// freeform string concatenation.
func BuildPrompt(input, cwd string) string {
	var b strings.Builder

	b.WriteString("You complete a partially typed shell command. ")
	b.WriteString("Respond with only the completed command line, no explanation.\n\n")

	for _, ex := range exemplars {
		b.WriteString("Input: ")
		b.WriteString(ex[0])
		b.WriteString("\nCompletion: ")
		b.WriteString(ex[1])
		b.WriteString("\n\n")
	}

	if cwd != "" {
		b.WriteString("Working directory: ")
		b.WriteString(cwd)
		b.WriteString("\n")
	}

	b.WriteString("Input: ")
	b.WriteString(input)
	b.WriteString("\nCompletion:")

	return b.String()
}
