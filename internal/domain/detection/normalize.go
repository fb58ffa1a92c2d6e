package detection

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Normalized is the one canonical verdict shape the rest of the system sees.
// Each upstream route answers with its own schema; everything is converted
// here, at the boundary, and nowhere else.
type Normalized struct {
	Verdict    Verdict
	Confidence decimal.Decimal // fixed to 4 decimal places
	Generator  *string         // argmax of the score map, nil when the map is empty or absent
	Scores     json.RawMessage // flat label->score map, nil when absent
}

// Upstream response schemas, one per route family.
type imageReport struct {
	Report struct {
		Verdict string `json:"verdict"`
		AI      struct {
			Confidence float64 `json:"confidence"`
		} `json:"ai"`
		Generator json.RawMessage `json:"generator"`
	} `json:"report"`
}

type audioReport struct {
	Verdict         string          `json:"verdict"`
	Confidence      float64         `json:"confidence"`
	GeneratorScores json.RawMessage `json:"generator_scores"`
}

type videoReport struct {
	Prediction  string  `json:"prediction"`
	Probability float64 `json:"probability"`
}

type textReport struct {
	Verdict       string          `json:"verdict"`
	AIProbability float64         `json:"ai_probability"`
	Models        json.RawMessage `json:"models"`
}

// Normalize converts a raw upstream payload for the given route into the
// canonical shape. Video responses carry no generator map and always
// normalize to a nil generator.
func Normalize(route Route, raw json.RawMessage) (*Normalized, error) {
	switch route {
	case RouteImage:
		var r imageReport
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("normalize image response: %w", err)
		}
		return build(r.Report.Verdict, r.Report.AI.Confidence, r.Report.Generator)
	case RouteVoice, RouteMusic:
		var r audioReport
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("normalize audio response: %w", err)
		}
		return build(r.Verdict, r.Confidence, r.GeneratorScores)
	case RouteVideo:
		var r videoReport
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("normalize video response: %w", err)
		}
		return build(r.Prediction, r.Probability, nil)
	case RouteText:
		var r textReport
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("normalize text response: %w", err)
		}
		return build(r.Verdict, r.AIProbability, r.Models)
	}
	return nil, fmt.Errorf("unknown route %q", route)
}

func build(verdict string, confidence float64, scoresRaw json.RawMessage) (*Normalized, error) {
	v := VerdictHuman
	if verdict == string(VerdictAI) {
		v = VerdictAI
	}

	n := &Normalized{
		Verdict:    v,
		Confidence: decimal.NewFromFloat(confidence).Round(4),
	}

	if len(scoresRaw) == 0 || bytes.Equal(scoresRaw, []byte("null")) {
		return n, nil
	}

	scores, err := orderedScores(scoresRaw)
	if err != nil {
		return nil, fmt.Errorf("parse generator scores: %w", err)
	}
	if len(scores) == 0 {
		return n, nil
	}

	best := scores[0]
	flat := make(map[string]float64, len(scores))
	for _, s := range scores {
		flat[s.Label] = s.Score
		// Strictly greater only: ties keep the first-encountered label.
		if s.Score > best.Score {
			best = s
		}
	}

	n.Generator = &best.Label
	n.Scores, err = json.Marshal(flat)
	if err != nil {
		return nil, err
	}
	return n, nil
}

type labelScore struct {
	Label string
	Score float64
}

// orderedScores walks the score object token by token so that map key order
// from the wire survives. Values are either bare numbers or objects with a
// "confidence" field, depending on the route.
func orderedScores(raw json.RawMessage) ([]labelScore, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var scores []labelScore
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		label, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}

		var score float64
		if err := json.Unmarshal(value, &score); err != nil {
			var obj struct {
				Confidence float64 `json:"confidence"`
			}
			if err := json.Unmarshal(value, &obj); err != nil {
				return nil, fmt.Errorf("score for %q is neither number nor object", label)
			}
			score = obj.Confidence
		}

		scores = append(scores, labelScore{Label: label, Score: score})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return scores, nil
}
