package browser

import (
	"encoding/json"
	"fmt"
)

// Selectors tells the measurement script which elements to inspect.
type Selectors struct {
	Card        string `json:"card"`
	Summary     string `json:"summary"`
	ReadMore    string `json:"readMore"`
	MarkerClass string `json:"markerClass"`
}

// measureTemplate collects every measurement in a single evaluation. Each
// section catches its own exception so one bad selector only fails the checks
// that depend on it.
const measureTemplate = `(() => {
  const sel = %s;
  const out = { cards: [], classes: { matched: 0, withClass: 0 } };
  try {
    document.querySelectorAll(sel.card).forEach((card) => {
      const s = card.querySelector(sel.summary);
      out.cards.push({
        height: card.getBoundingClientRect().height,
        summary: s ? {
          scrollWidth: s.scrollWidth,
          scrollHeight: s.scrollHeight,
          clientWidth: s.clientWidth,
          clientHeight: s.clientHeight,
        } : null,
        hasReadMore: card.querySelector(sel.readMore) !== null,
      });
    });
  } catch (e) {
    out.cards = [];
    out.cardsError = String(e);
  }
  try {
    const els = Array.from(document.querySelectorAll(sel.summary));
    out.classes.matched = els.length;
    out.classes.withClass = els.filter((el) => el.classList.contains(sel.markerClass)).length;
  } catch (e) {
    out.classesError = String(e);
  }
  return out;
})()`

const annotateTemplate = `(() => {
  const cards = document.querySelectorAll(%s);
  cards.forEach((card) => {
    card.style.border = '2px solid red';
    card.style.position = 'relative';
  });
  return cards.length;
})()`

// MeasureScript returns the JavaScript expression evaluated to collect
// measurements for sel.
func MeasureScript(sel Selectors) (string, error) {
	encoded, err := json.Marshal(sel)
	if err != nil {
		return "", fmt.Errorf("encoding selectors: %w", err)
	}

	return fmt.Sprintf(measureTemplate, encoded), nil
}

// AnnotateScript returns the JavaScript expression that outlines every card
// matched by cardSelector and evaluates to the number of cards.
func AnnotateScript(cardSelector string) (string, error) {
	encoded, err := json.Marshal(cardSelector)
	if err != nil {
		return "", fmt.Errorf("encoding selector: %w", err)
	}

	return fmt.Sprintf(annotateTemplate, encoded), nil
}
