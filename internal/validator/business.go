package validator

// RuleChecker is implemented by requests that carry cross-field rules
// which struct tags cannot express.
type RuleChecker interface {
	CheckRules() ValidationErrors
}

type BusinessValidator struct{}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{}
}

// Validate runs the request's own rules, if it has any.
func (b *BusinessValidator) Validate(s interface{}) ValidationErrors {
	checker, ok := s.(RuleChecker)
	if !ok {
		return nil
	}
	return checker.CheckRules()
}
