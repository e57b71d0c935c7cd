package validation

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	validatorv10 "github.com/go-playground/validator/v10"
)

var setupOnce sync.Once

// Setup configures gin's binding validator so that field errors carry the
// JSON name of the offending field. It is safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validatorv10.Validate); ok {
			configure(v)
		}
	})
}

// New returns a standalone validator configured like gin's.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	configure(v)
	return v
}

func configure(v *validatorv10.Validate) {
	v.SetTagName("binding")
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("maxbytes", maxBytes)
}

// maxBytes bounds the encoded length of a string, unlike max which counts
// runes.
func maxBytes(fl validatorv10.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}
