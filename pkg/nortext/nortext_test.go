package nortext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsFold(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		substr string
		want   bool
	}{
		{"ascii case", "Vi AVSLÅR kravet", "avslår", true},
		{"norwegian upper", "IKKE ANSVARLIG", "ikke ansvarlig", true},
		{"absent", "vi tilbyr oppgjør", "avslår", false},
		{"empty needle", "noe tekst", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsFold(tt.s, tt.substr))
		})
	}
}

func TestIndexFoldPreservesOffsets(t *testing.T) {
	s := "Vi AVSLÅR kravet ditt"
	idx := IndexFold(s, "avslår")
	require.Equal(t, 3, idx)
	assert.Equal(t, "AVSLÅR", s[idx:idx+len("avslår")])
}

func TestNormalize(t *testing.T) {
	// decomposed a + ring above vs composed å
	decomposed := "avslår"
	assert.Equal(t, "avslår", Normalize(decomposed))
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Vi avslår kravet, jf. punkt 4.")
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		words = append(words, tok.Text)
	}
	assert.Equal(t, []string{"Vi", "avslår", "kravet", "jf", "punkt", "4"}, words)

	src := "Vi avslår kravet, jf. punkt 4."
	for _, tok := range tokens {
		assert.Equal(t, tok.Text, src[tok.Start:tok.End])
	}
}

func TestHasWord(t *testing.T) {
	tests := []struct {
		name string
		s    string
		word string
		want bool
	}{
		{"whole word", "det er ikke vårt ansvar", "ikke", true},
		{"case folded", "Aldri har vi lovet dette", "aldri", true},
		{"substring only", "det er nok penger", "no", false},
		{"absent", "vi beklager forsinkelsen", "ikke", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasWord(tt.s, tt.word))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"dotted thousands", "kr 50.000", 50000, true},
		{"space thousands", "50 000", 50000, true},
		{"decimal comma", "kr 12.500,50", 12500.50, true},
		{"trailing dash", "NOK 12.500,-", 12500, true},
		{"plain integer", "50000", 50000, true},
		{"prefix only", "kr", 0, false},
		{"letters", "femti tusen", 0, false},
		{"double comma", "1,2,3", 0, false},
		{"empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestFindAmount(t *testing.T) {
	text := "Vi avslår kravet. Som en minnelig løsning tilbyr vi deg likevel et oppgjør på kr 50.000."
	value, start, end, ok := FindAmount(text)
	require.True(t, ok)
	assert.InDelta(t, 50000, value, 0.001)
	assert.Equal(t, "kr 50.000", text[start:end])
}

func TestFindAmountAbsent(t *testing.T) {
	_, _, _, ok := FindAmount("takk for din henvendelse")
	assert.False(t, ok)
}

func TestFormatNOK(t *testing.T) {
	got := FormatNOK(50000)
	assert.Contains(t, got, "kr")
	assert.Contains(t, got, "50")
	assert.NotContains(t, got, "50000")
}
