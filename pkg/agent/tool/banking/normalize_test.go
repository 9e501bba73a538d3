package banking_test

import (
	"testing"

	"github.com/abcbank/voxteller/pkg/agent/tool/banking"
	"github.com/m-mizutani/gt"
)

func TestNormalizePIN(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain digits", "1234", "1234"},
		{"spaced digits", "1 2 3 4", "1234"},
		{"comma separated", "1,2,3,4", "1234"},
		{"hyphenated", "1-2-3-4", "1234"},
		{"digit words", "one two three four", "1234"},
		{"mixed words and digits", "one 2 three 4", "1234"},
		{"zero as oh", "oh one oh one", "0101"},
		{"uppercase words", "ONE TWO THREE FOUR", "1234"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := banking.NormalizePIN(tc.input)
			gt.NoError(t, err)
			gt.Equal(t, got, tc.want)
		})
	}
}

func TestNormalizePINEquivalence(t *testing.T) {
	// All spoken variants of the same digits must canonicalize identically
	variants := []string{"1 2 3 4", "one two three four", "1234", "1-2-3-4"}
	for _, v := range variants {
		got, err := banking.NormalizePIN(v)
		gt.NoError(t, err)
		gt.Equal(t, got, "1234")
	}
}

func TestNormalizePINInvalid(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"too short", "123"},
		{"too long", "1234567"},
		{"alphabetic", "abcd"},
		{"unknown word", "one two three banana"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := banking.NormalizePIN(tc.input)
			gt.Error(t, err)
		})
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	gt.Equal(t, banking.NormalizeIdentifier("John 123"), "John123")
	gt.Equal(t, banking.NormalizeIdentifier("user-123"), "user123")
	gt.Equal(t, banking.NormalizeIdentifier("J.Doe"), "JDoe")
	gt.Equal(t, banking.NormalizeIdentifier("John123"), "John123")
}

func TestNormalizeIdentifierIdempotent(t *testing.T) {
	inputs := []string{"John 123", "user_123", "A-B.C", "plain"}
	for _, in := range inputs {
		once := banking.NormalizeIdentifier(in)
		gt.Equal(t, banking.NormalizeIdentifier(once), once)
	}
}
