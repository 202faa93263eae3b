package vitrine

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// minPublishedContent is the shortest body accepted for a published post.
const minPublishedContent = 50

// ArticleInput is the JSON payload for admin create and update requests.
type ArticleInput struct {
	Title     string   `json:"title" validate:"required,min=5,max=200"`
	Slug      string   `json:"slug" validate:"required,min=3,max=100,slug"`
	Category  string   `json:"category" validate:"required,category"`
	Tags      []string `json:"tags" validate:"max=10"`
	Excerpt   string   `json:"excerpt" validate:"required,min=10,max=500"`
	Content   string   `json:"content"`
	Image     string   `json:"image"`
	Locale    string   `json:"locale" validate:"omitempty,locale"`
	Published bool     `json:"published"`
	SEO       SEO      `json:"seo"`
}

// newValidator builds the validator used by the admin API, with the closed
// slug, category, and locale rules registered and field names taken from
// json tags so error lists match the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("locale", func(fl validator.FieldLevel) bool {
		_, ok := ParseLocale(fl.Field().String())
		return ok
	})
	return v
}

// validateArticle runs struct validation plus the publish-gating rule: a
// published post needs a real body. Returns nil when the input is clean.
func validateArticle(v *validator.Validate, in ArticleInput) ValidationErrors {
	var errs ValidationErrors
	if err := v.Struct(in); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				errs = append(errs, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
			}
		} else {
			errs = append(errs, FieldError{Field: "input", Message: "invalid request"})
		}
	}
	if in.Published && len(strings.TrimSpace(in.Content)) < minPublishedContent {
		errs = append(errs, FieldError{
			Field:   "content",
			Message: fmt.Sprintf("published articles need at least %d characters of content", minPublishedContent),
		})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Field() == "tags" {
			return fmt.Sprintf("accepts at most %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "slug":
		return "must contain only lowercase letters, digits, and hyphens"
	case "category":
		return "is not a known category"
	case "locale":
		return "must be fr or en"
	}
	return "is invalid"
}

// sanitizeArticle strips script-bearing fragments from every free-text field
// before the input reaches the store.
func sanitizeArticle(in ArticleInput) ArticleInput {
	in.Title = strings.TrimSpace(SanitizeText(in.Title))
	in.Excerpt = strings.TrimSpace(SanitizeText(in.Excerpt))
	in.Content = SanitizeText(in.Content)
	in.Image = strings.TrimSpace(SanitizeText(in.Image))
	in.Tags = SanitizeAll(in.Tags)
	in.SEO.Title = strings.TrimSpace(SanitizeText(in.SEO.Title))
	in.SEO.Description = strings.TrimSpace(SanitizeText(in.SEO.Description))
	in.SEO.Keywords = SanitizeAll(in.SEO.Keywords)
	return in
}
