package langdetect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/ytsentiment/internal/adapter/driven/langdetect"
	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
)

func TestDetect(t *testing.T) {
	d := langdetect.NewDetector()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "This is honestly one of the best videos I have watched this year, thank you for making it.", "en"},
		{"spanish", "Este es uno de los mejores videos que he visto este año, muchas gracias por hacerlo.", "es"},
		{"german", "Das ist wirklich eines der besten Videos, die ich dieses Jahr gesehen habe, vielen Dank dafür.", "de"},
		{"russian", "Это действительно одно из лучших видео, которые я видел в этом году, спасибо большое.", "ru"},
		{"empty", "", model.UnknownLanguage},
		{"whitespace", "   \n\t", model.UnknownLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.text))
		})
	}
}

func TestDetect_NoScript(t *testing.T) {
	d := langdetect.NewDetector()
	assert.Equal(t, model.UnknownLanguage, d.Detect("12345 !!! ???"))
}
