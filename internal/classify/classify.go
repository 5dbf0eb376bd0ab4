// Package classify assigns a paper to an analysis domain with a single
// cheap generation call over its opening text.
package classify

import (
	"context"
	"strings"

	"deepread/internal/logging"
	"deepread/internal/pipeline"
)

// Domain labels the classifier can produce. Anything else from the model
// degrades to the general domain.
const (
	DomainGeneral = "general"
	DomainRFIC    = "rf_ic"
)

// excerptLen bounds how much of the paper the classifier sees. The title,
// abstract, and introduction are enough to pick a domain.
const excerptLen = 2000

const classifyPrompt = `Classify the paper excerpt below into exactly one category.
Reply with a single word and nothing else:

RF_IC   - radio-frequency, millimeter-wave, analog or mixed-signal integrated circuit design
GENERAL - anything else

Excerpt:
`

// Classifier picks the analysis domain for a paper.
type Classifier struct {
	Gen pipeline.Generator
}

// Classify returns the domain for the document. Classification is
// best-effort: any generation failure or unrecognized answer falls back
// to the general domain so the run proceeds with the baseline tasks.
func (c *Classifier) Classify(ctx context.Context, document string) string {
	logger := logging.New("classify")

	excerpt := document
	if len(excerpt) > excerptLen {
		excerpt = excerpt[:excerptLen]
	}

	out, err := c.Gen.Generate(ctx, pipeline.Request{
		TaskID: "domain_classification",
		Prompt: classifyPrompt + excerpt,
	})
	if err != nil {
		logger.Warn("classification failed, using general domain", "error", err)
		return DomainGeneral
	}

	switch normalize(out) {
	case "rf_ic", "rfic":
		return DomainRFIC
	case "general":
		return DomainGeneral
	default:
		logger.Warn("unrecognized classification, using general domain", "answer", strings.TrimSpace(out))
		return DomainGeneral
	}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ".!`\"'")
	return strings.ReplaceAll(s, "-", "_")
}
