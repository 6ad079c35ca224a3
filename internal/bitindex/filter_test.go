package bitindex

import (
	"reflect"
	"testing"
)

func testEvaluator() *Evaluator {
	return NewEvaluator(map[string]*BitSet{
		"metal": FromIDs(1, 2, 3),
		"prog":  FromIDs(2, 3, 4),
		"jazz":  FromIDs(5),
	})
}

func TestEvaluateTag(t *testing.T) {
	e := testEvaluator()

	if got := e.Evaluate(TagExpr{Tag: "metal"}).ToList(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("tag metal = %v", got)
	}

	// Absent tag contributes an empty set, not an error.
	if got := e.Evaluate(TagExpr{Tag: "zeuhl"}).Size(); got != 0 {
		t.Errorf("absent tag size = %d", got)
	}
}

func TestEvaluateAnd(t *testing.T) {
	e := testEvaluator()

	expr := AndExpr{Left: TagExpr{Tag: "metal"}, Right: TagExpr{Tag: "prog"}}
	if got := e.Evaluate(expr).ToList(); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("metal AND prog = %v", got)
	}
}

func TestEvaluateOr(t *testing.T) {
	e := testEvaluator()

	expr := OrExpr{Left: TagExpr{Tag: "metal"}, Right: TagExpr{Tag: "jazz"}}
	if got := e.Evaluate(expr).ToList(); !reflect.DeepEqual(got, []int{1, 2, 3, 5}) {
		t.Errorf("metal OR jazz = %v", got)
	}
}

func TestEvaluateNotRelativeToUniverse(t *testing.T) {
	e := testEvaluator()

	expr := NotExpr{Expr: TagExpr{Tag: "metal"}}
	if got := e.Evaluate(expr).ToList(); !reflect.DeepEqual(got, []int{4, 5}) {
		t.Errorf("NOT metal = %v", got)
	}
}

func TestDoubleNegation(t *testing.T) {
	e := testEvaluator()

	inner := OrExpr{Left: TagExpr{Tag: "metal"}, Right: TagExpr{Tag: "jazz"}}
	double := NotExpr{Expr: NotExpr{Expr: inner}}

	want := e.Evaluate(inner).Intersect(e.Universe())
	if got := e.Evaluate(double); !got.Equal(want) {
		t.Errorf("double negation = %v, want %v", got.ToList(), want.ToList())
	}
}

func TestEvaluateNil(t *testing.T) {
	e := testEvaluator()

	if got := e.Evaluate(nil).ToList(); !reflect.DeepEqual(got, []int{1, 2, 3, 4, 5}) {
		t.Errorf("nil expr = %v, want universe", got)
	}
}

func TestMatchingCounts(t *testing.T) {
	e := testEvaluator()

	expr := TagExpr{Tag: "metal"}
	got := e.MatchingCounts(expr, []string{"prog", "jazz", "zeuhl"})
	want := []TagCount{
		{Tag: "prog", Count: 2}, // {2,3}
		{Tag: "jazz", Count: 0},
		{Tag: "zeuhl", Count: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchingCounts = %v, want %v", got, want)
	}

	// Nil expression: each tag reports its own size.
	got = e.MatchingCounts(nil, []string{"metal", "prog"})
	want = []TagCount{{Tag: "metal", Count: 3}, {Tag: "prog", Count: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchingCounts(nil) = %v, want %v", got, want)
	}
}

func TestSamples(t *testing.T) {
	e := testEvaluator()

	if got := e.Samples(nil, 3); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Samples(nil, 3) = %v", got)
	}
	if got := e.Samples(TagExpr{Tag: "prog"}, 10); !reflect.DeepEqual(got, []int{2, 3, 4}) {
		t.Errorf("Samples(prog, 10) = %v", got)
	}
	if got := e.Samples(nil, 0); got != nil {
		t.Errorf("Samples(nil, 0) = %v", got)
	}
}

func TestParseExpr(t *testing.T) {
	payload := []byte(`{"type":"and","left":{"type":"tag","tag":"metal"},"right":{"type":"not","expr":{"type":"tag","tag":"jazz"}}}`)

	expr, err := ParseExpr(payload)
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}

	e := testEvaluator()
	if got := e.Evaluate(expr).ToList(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("parsed expression = %v", got)
	}
}

func TestParseExprErrors(t *testing.T) {
	if _, err := ParseExpr([]byte(`{"type":"xor"}`)); err == nil {
		t.Error("unknown type accepted")
	}
	if _, err := ParseExpr([]byte(`not json`)); err == nil {
		t.Error("malformed payload accepted")
	}

	expr, err := ParseExpr(nil)
	if err != nil || expr != nil {
		t.Errorf("ParseExpr(nil) = %v, %v", expr, err)
	}
	expr, err = ParseExpr([]byte(`{}`))
	if err != nil || expr != nil {
		t.Errorf("ParseExpr({}) = %v, %v", expr, err)
	}
}
