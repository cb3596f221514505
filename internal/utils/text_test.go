package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Doğru", "dogru"},
		{"YANLIŞ", "yanlis"},
		{"Boş", "bos"},
		{"Türkçe", "turkce"},
		{"İnkılap", "inkilap"},
		{"Öğrenci No", "ogrenci no"},
		{"net", "net"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Fold(c.in), "Fold(%q)", c.in)
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "ayse yilmaz", NormalizeName("  AYŞE   Yılmaz "))
	assert.Equal(t, "mehmet ali demir", NormalizeName("Mehmet Ali\tDemir"))
	assert.Equal(t, "", NormalizeName("   "))
}
