package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Pre-compiled patterns for article content cleaning. All of them are RE2
// expressions, so each pass is linear in the size of the container.
var (
	reScript  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	reStyle   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	reComment = regexp.MustCompile(`(?s)<!--.*?-->`)

	// [Bloque 12: #a4] index markers, as a paragraph or as bare text.
	reBlockIndexParagraph = regexp.MustCompile(`(?is)<p\b[^>]*class="[^"]*\bbloque\b[^"]*"[^>]*>.*?</p\s*>`)
	reBlockIndexText      = regexp.MustCompile(`(?i)\[\s*Bloque\s+\d+\s*:\s*#[^\]]*\]`)

	// Modification footnotes: the nota_pie paragraphs, and any paragraph
	// that opens with an amendment notice. "Se modifica ..." only counts when
	// it cites a BOE reference, since amending laws use the same words in
	// their own articles.
	reFootnoteParagraph = regexp.MustCompile(`(?is)<p\b[^>]*class="[^"]*\bnota_pie[^"]*"[^>]*>.*?</p\s*>`)
	reParagraph         = regexp.MustCompile(`(?is)<p\b[^>]*>.*?</p\s*>`)
	reAmendmentNotice   = regexp.MustCompile(`(?is)^\s*(?:(?:Modificad|Redactad|Añadid|Suprimid)[oa]s?\s+(?:por|conforme)|Téngase\s+en\s+cuenta)`)
	reReferencedChange  = regexp.MustCompile(`(?is)^\s*Se\s+(?:modifica|añade|suprime|deroga)\b.*\bRef\.\s*BOE`)

	// "Back to top" links.
	reBackToTopParagraph = regexp.MustCompile(`(?is)<p\b[^>]*class="[^"]*\blinkSubir\b[^"]*"[^>]*>.*?</p\s*>`)
	reBackToTopLink      = regexp.MustCompile(`(?is)<a\b[^>]*href="#(?:top|inicio|cabecera)?"[^>]*>.*?</a\s*>`)
	reBackToTopText      = regexp.MustCompile(`(?is)<a\b[^>]*>\s*(?:Subir|Volver\s+arriba|Ir\s+arriba)\s*</a\s*>`)

	reBlockquote = regexp.MustCompile(`(?is)<blockquote\b[^>]*>.*?</blockquote\s*>`)

	reForm        = regexp.MustCompile(`(?is)<form\b[^>]*>.*?</form\s*>`)
	reFormControl = regexp.MustCompile(`(?is)<(select|button|textarea)\b[^>]*>.*?</(?:select|button|textarea)\s*>`)
	reInput       = regexp.MustCompile(`(?i)<input\b[^>]*>`)

	reJurisprudenceLink = regexp.MustCompile(`(?is)<a\b[^>]*jurisprudencia[^>]*>.*?</a\s*>`)
	reJurisprudenceSpan = regexp.MustCompile(`(?is)<span\b[^>]*jurisprudencia[^>]*>.*?</span\s*>`)
	reJurisprudenceDiv  = regexp.MustCompile(`(?is)<div\b[^>]*jurisprudencia[^>]*>.*?</div\s*>`)
	reJurisprudenceWord = regexp.MustCompile(`(?i)\bjurisprudencia\b`)

	reParagraphEnd = regexp.MustCompile(`(?i)</p\s*>`)
	reLineBreak    = regexp.MustCompile(`(?i)<br\s*/?>`)
	reListItemEnd  = regexp.MustCompile(`(?i)</li\s*>`)
	reDivEnd       = regexp.MustCompile(`(?i)</div\s*>`)
	reTag          = regexp.MustCompile(`<[^>]*>`)

	reHorizontalSpace = regexp.MustCompile(`[ \t\x{00A0}]+`)
	reMultiNewline    = regexp.MustCompile(`\n{3,}`)
)

// noisePatterns are removed, in order, before structural conversion.
var noisePatterns = []*regexp.Regexp{
	reScript,
	reStyle,
	reComment,
	reBlockIndexParagraph,
	reFootnoteParagraph,
	reBackToTopParagraph,
	reBlockquote,
	reForm,
	reFormControl,
	reInput,
	reJurisprudenceLink,
	reJurisprudenceSpan,
	reJurisprudenceDiv,
	reBackToTopLink,
	reBackToTopText,
}

// CleanContent reduces the markup of an article body to plain text.
// Editorial noise (index markers, amendment notes, back-to-top links,
// blockquoted notes, forms, jurisprudence widgets) is removed, paragraph
// boundaries become blank lines, and remaining tags are stripped.
func CleanContent(markup string) string {
	content := strings.ReplaceAll(markup, "\r\n", "\n")

	for _, pattern := range noisePatterns {
		content = pattern.ReplaceAllString(content, "")
	}
	content = reParagraph.ReplaceAllStringFunc(content, dropAmendmentParagraph)

	content = reParagraphEnd.ReplaceAllString(content, "\n\n")
	content = reLineBreak.ReplaceAllString(content, "\n")
	content = reListItemEnd.ReplaceAllString(content, "\n")
	content = reDivEnd.ReplaceAllString(content, "\n")
	content = reTag.ReplaceAllString(content, "")

	content = html.UnescapeString(content)
	content = reBlockIndexText.ReplaceAllString(content, "")
	content = reJurisprudenceWord.ReplaceAllString(content, "")

	return tidyLines(content)
}

// dropAmendmentParagraph removes a paragraph whose text is an amendment notice.
func dropAmendmentParagraph(paragraph string) string {
	text := html.UnescapeString(reTag.ReplaceAllString(paragraph, ""))
	if reAmendmentNotice.MatchString(text) || reReferencedChange.MatchString(text) {
		return ""
	}
	return paragraph
}

// tidyLines collapses horizontal whitespace, trims every line, drops lines
// that are bare amendment notices, and limits blank runs to one empty line.
func tidyLines(content string) string {
	content = reHorizontalSpace.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "Modificado por") {
			continue
		}
		kept = append(kept, line)
	}

	content = strings.Join(kept, "\n")
	content = reMultiNewline.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
