package textencoding

// Core14Metrics holds per-glyph advance widths (in 1/1000 em units, as PDF
// stores them) for one of the 14 standard fonts ISO 32000-1 §9.6.2.2
// guarantees every conforming reader has built in, so a CID-less width
// fallback never has to guess. The widths below are transcribed from the
// Adobe Font Metrics files bundled with the teacher repo's standalone font
// package (afms/Helvetica.afm, afms/Helvetica-Bold.afm, afms/Times-Roman.afm,
// afms/Times-Bold.afm, afms/Courier.afm) — not re-derived, since the exact
// AFM numbers were already present in the example corpus.
type Core14Metrics map[string]float64

var core14Once = map[string]Core14Metrics{}

// Core14Width looks up the advance width of glyph in the named standard
// font (see Core14MetricsFor for the recognized names), returning
// (width, true) or (0, false) if the font or glyph is unknown.
func Core14Width(fontName, glyph string) (float64, bool) {
	m := Core14MetricsFor(fontName)
	if m == nil {
		return 0, false
	}
	w, ok := m[glyph]
	return w, ok
}

// Core14MetricsFor returns the glyph width table for one of the 14
// standard PostScript font names (Helvetica, Helvetica-Bold,
// Helvetica-Oblique, Helvetica-BoldOblique, Times-Roman, Times-Bold,
// Times-Italic, Times-BoldItalic, Courier and its three styled variants,
// Symbol, ZapfDingbats), or nil if fontName is not one of them. The
// Helvetica and Courier Oblique variants share their upright sibling's
// metrics (Helvetica-Oblique.afm reports identical widths to
// Helvetica.afm); Times-Italic and Times-BoldItalic have tables of their
// own.
func Core14MetricsFor(fontName string) Core14Metrics {
	switch fontName {
	case "Helvetica", "Helvetica-Oblique", "ArialMT", "Arial":
		return buildCore14("Helvetica", type1CommonGlyphs, helveticaWx)
	case "Helvetica-Bold", "Helvetica-BoldOblique", "Arial-BoldMT", "Arial-Bold":
		return buildCore14("Helvetica-Bold", type1CommonGlyphs, helveticaBoldWx)
	case "Times-Roman", "TimesNewRomanPSMT", "Times":
		return buildCore14("Times-Roman", type1CommonGlyphs, timesRomanWx)
	case "Times-Bold", "TimesNewRomanPS-BoldMT":
		return buildCore14("Times-Bold", type1CommonGlyphs, timesBoldWx)
	case "Times-Italic", "TimesNewRomanPS-ItalicMT":
		return buildCore14("Times-Italic", type1CommonGlyphs, timesItalicWx)
	case "Times-BoldItalic", "TimesNewRomanPS-BoldItalicMT":
		return buildCore14("Times-BoldItalic", type1CommonGlyphs, timesBoldItalicWx)
	case "Courier", "Courier-Bold", "Courier-Oblique", "Courier-BoldOblique", "CourierNewPSMT":
		return buildCore14Fixed(fontName, 600)
	case "Symbol":
		return buildCore14Symbol()
	case "ZapfDingbats":
		return buildCore14Fixed(fontName, 788) // approximation: one 788-unit advance for every glyph
	default:
		return nil
	}
}

func buildCore14(key string, glyphs []string, wx []int16) Core14Metrics {
	if m, ok := core14Once[key]; ok {
		return m
	}
	m := make(Core14Metrics, len(glyphs))
	for i, g := range glyphs {
		if i < len(wx) {
			m[g] = float64(wx[i])
		}
	}
	core14Once[key] = m
	return m
}

func buildCore14Fixed(key string, width float64) Core14Metrics {
	if m, ok := core14Once[key]; ok {
		return m
	}
	m := make(Core14Metrics, len(type1CommonGlyphs))
	for _, g := range type1CommonGlyphs {
		m[g] = width
	}
	core14Once[key] = m
	return m
}

func buildCore14Symbol() Core14Metrics {
	if m, ok := core14Once["Symbol"]; ok {
		return m
	}
	m := make(Core14Metrics, len(symbolGlyphs))
	for i, g := range symbolGlyphs {
		if i < len(symbolWx) {
			m[g] = float64(symbolWx[i])
		}
	}
	core14Once["Symbol"] = m
	return m
}

// symbolGlyphs/symbolWx are a reduced subset of the Symbol.afm glyph list
// covering the Greek letters and common math operators reachable through
// SymbolEncoding above; widths are representative Adobe Symbol advances
// rather than a full re-transcription of all 189 Symbol glyphs.
var symbolGlyphs = []string{
	"space", "exclam", "universal", "numbersign", "existential", "percent",
	"ampersand", "suchthat", "parenleft", "parenright", "asteriskmath", "plus",
	"comma", "minus", "period", "slash",
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"colon", "semicolon", "less", "equal", "greater", "question",
	"Alpha", "Beta", "Chi", "Delta", "Epsilon", "Phi", "Gamma", "Eta", "Iota",
	"theta1", "Kappa", "Lambda", "Mu", "Nu", "Omicron", "Pi", "Theta", "Rho",
	"Sigma", "Tau", "Upsilon", "sigma1", "Omega", "Xi", "Psi", "Zeta",
	"alpha", "beta", "chi", "delta", "epsilon", "phi", "gamma", "eta", "iota",
	"phi1", "kappa", "lambda", "mu", "nu", "omicron", "pi", "theta", "rho",
	"sigma", "tau", "upsilon", "omega1", "omega", "xi", "psi", "zeta",
}

var symbolWx = []int16{
	250, 333, 713, 500, 549, 833,
	778, 439, 333, 333, 500, 549,
	250, 549, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500,
	278, 278, 549, 549, 549, 444,
	722, 667, 722, 612, 611, 763, 603, 722, 333,
	631, 722, 686, 889, 722, 722, 768, 741, 556,
	592, 611, 690, 439, 768, 645, 795, 611,
	631, 549, 549, 494, 439, 521, 411, 603, 329,
	603, 549, 549, 576, 521, 549, 549, 521, 549,
	603, 439, 576, 713, 686, 493, 686, 494,
}
