package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillBlankNormalization(t *testing.T) {
	q := FillBlank{Header: Header{ID: "q1", Text: "The capital of France is ___.", Points: 1}, Accepted: []string{"Paris"}}

	for _, answer := range []string{"Paris", " paris ", "PARIS", "\tParis\n"} {
		assert.Equal(t, VerdictCorrect, q.Judge(Text(answer)), "answer %q", answer)
	}
	for _, answer := range []string{"Pari", "", "   ", "Paris France"} {
		assert.Equal(t, VerdictIncorrect, q.Judge(Text(answer)), "answer %q", answer)
	}
}

func TestFillBlankAcceptsAnyListedAnswer(t *testing.T) {
	q := FillBlank{Header: Header{ID: "q1", Text: "___ is a hook", Points: 1}, Accepted: []string{"useState", "useEffect"}}
	assert.Equal(t, VerdictCorrect, q.Judge(Text("USEEFFECT")))
	assert.Equal(t, VerdictIncorrect, q.Judge(Text("useMemo")))
}

func TestMultipleChoiceIsAllOrNothing(t *testing.T) {
	q := MultipleChoice{
		Header: Header{ID: "q1", Points: 3},
		Options: []Option{
			{ID: "a", Correct: true},
			{ID: "b", Correct: true},
			{ID: "c"},
		},
	}

	cases := []struct {
		name string
		resp Response
		want Verdict
	}{
		{"exact", Choices("a", "b"), VerdictCorrect},
		{"exact reordered", Choices("b", "a"), VerdictCorrect},
		{"duplicates ignored", Choices("a", "b", "a"), VerdictCorrect},
		{"subset", Choices("a"), VerdictIncorrect},
		{"superset", Choices("a", "b", "c"), VerdictIncorrect},
		{"empty", Choices(), VerdictIncorrect},
		{"unanswered", Response{}, VerdictIncorrect},
		{"single value", Choice("a"), VerdictIncorrect},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, q.Judge(tc.resp))
		})
	}
}

func TestSingleChoiceUsesFirstCorrectOption(t *testing.T) {
	q := SingleChoice{
		Header:  Header{ID: "q1", Points: 1},
		Options: []Option{{ID: "a"}, {ID: "b", Correct: true}, {ID: "c", Correct: true}},
	}
	assert.Equal(t, VerdictCorrect, q.Judge(Choice("b")))
	assert.Equal(t, VerdictIncorrect, q.Judge(Choice("c")))
	assert.Equal(t, VerdictIncorrect, q.Judge(Response{}))
}

func TestTrueFalseAndShortAnswer(t *testing.T) {
	tf := TrueFalse{Header: Header{ID: "q1", Points: 1}, Correct: true}
	assert.Equal(t, VerdictCorrect, tf.Judge(Choice("true")))
	assert.Equal(t, VerdictIncorrect, tf.Judge(Choice("false")))
	assert.Equal(t, VerdictIncorrect, tf.Judge(Response{}))

	sa := ShortAnswer{Header: Header{ID: "q2", Points: 5}, SampleAnswer: "anything"}
	assert.Equal(t, VerdictUngraded, sa.Judge(Text("anything")))
	assert.Equal(t, VerdictUngraded, sa.Judge(Response{}))
}

func TestResponseToggle(t *testing.T) {
	r := Choices()
	r = r.Toggle("a")
	r = r.Toggle("b")
	assert.Equal(t, []string{"a", "b"}, r.Values)

	r = r.Toggle("a")
	assert.Equal(t, []string{"b"}, r.Values)

	r = r.Toggle("b")
	assert.True(t, r.IsMulti())
	assert.Empty(t, r.Values)
}

func TestResponseJSONShape(t *testing.T) {
	answers := Answers{"q1": Choice("b"), "q2": Choices("a", "c"), "q3": Choices()}

	data, err := json.Marshal(answers)
	require.NoError(t, err)
	assert.JSONEq(t, `{"q1":"b","q2":["a","c"],"q3":[]}`, string(data))

	var decoded Answers
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "b", decoded["q1"].Value)
	assert.False(t, decoded["q1"].IsMulti())
	assert.Equal(t, []string{"a", "c"}, decoded["q2"].Values)
	assert.True(t, decoded["q3"].IsMulti())
}

func TestAnswersCloneIsDeep(t *testing.T) {
	answers := Answers{"q1": Choices("a")}
	clone := answers.Clone()
	clone["q1"].Values[0] = "z"
	assert.Equal(t, "a", answers["q1"].Values[0])
}
