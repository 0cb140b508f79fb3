// Package validators holds the request validation shared by the per-area validator packages.
package validators

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"cursapp/middleware"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	notBlankTag = "notblank"
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// report json names, not Go field names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = Validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		if str, ok := fl.Field().Interface().(string); ok {
			return strings.TrimSpace(str) != ""
		}
		return false
	})
	_ = Validate.RegisterTranslation(notBlankTag, Translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string { return fe.Field() + " cannot be blank" },
	)
}

// Struct validates s and returns a field → message map, empty when s is valid.
func Struct(s interface{}) map[string]string {
	errs := make(map[string]string)
	err := Validate.Struct(s)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["request"] = "Invalid request!"
		return errs
	}
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), namespaceRoot(fe))
		if field == "" {
			field = fe.Field()
		}
		errs[field] = message(fe.Translate(Translator))
	}
	return errs
}

// namespaceRoot is the "Struct." prefix of a field error namespace.
func namespaceRoot(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[:i+1]
	}
	return ""
}

func message(s string) string {
	if s == "" {
		return "Invalid value!"
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r) + "!"
}

// Check is an extra rule that Validate cannot express, run after the struct tags passed.
type Check[T any] func(req *T, errs map[string]string)

// Body parses the JSON body into a T, validates it and stores it under c.Locals(key).
func Body[T any](key string, checks ...Check[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if err := c.BodyParser(req); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		errs := Struct(req)
		if len(errs) == 0 {
			for _, check := range checks {
				check(req, errs)
			}
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(key, req)
		return c.Next()
	}
}

// Query parses the query string into a T, validates it and stores it under c.Locals(key).
func Query[T any](key string, checks ...Check[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if err := c.QueryParser(req); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		errs := Struct(req)
		if len(errs) == 0 {
			for _, check := range checks {
				check(req, errs)
			}
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(key, req)
		return c.Next()
	}
}

// PathIDs parses the named path params as positive integers and stores each one under
// c.Locals(name) as a uint.
func PathIDs(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		errs := make(map[string]string)
		ids := make(map[string]uint, len(names))
		for _, name := range names {
			v, err := strconv.ParseUint(c.Params(name), 10, 64)
			if err != nil || v == 0 {
				errs[name] = fmt.Sprintf("%s must be a positive integer!", name)
				continue
			}
			ids[name] = uint(v)
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		for name, id := range ids {
			c.Locals(name, id)
		}
		return c.Next()
	}
}

// ID returns a path id stored by PathIDs.
func ID(c *fiber.Ctx, name string) uint {
	id, _ := c.Locals(name).(uint)
	return id
}

type Pagination struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// Normalize fills the defaults: page 1, limit 10.
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginate validates page and limit and stores them under c.Locals("pagination").
func Paginate() fiber.Handler {
	return Query[Pagination]("pagination", func(p *Pagination, _ map[string]string) { p.Normalize() })
}

// PageOf returns the pagination stored by Paginate, or the defaults.
func PageOf(c *fiber.Ctx) Pagination {
	if p, ok := c.Locals("pagination").(*Pagination); ok {
		return *p
	}
	p := Pagination{}
	p.Normalize()
	return p
}
