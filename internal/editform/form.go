// Package editform holds the state of the edit-user form: the loaded record, the
// working copy of its editable fields, validation results and the submit phase.
package editform

import (
	"fmt"
	"unicode/utf8"

	"user-admin-console/internal/domain/user"
)

// Name length bounds, in characters (runes). They match the user store's
// validation so a name the form accepts is never rejected on write.
const (
	MinNameLength = 2
	MaxNameLength = 100
)

// Field names as posted by the form.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldOrg       = "org"
	FieldRole      = "role"
)

// Phase is where the form is in its load and submit lifecycle.
type Phase int

const (
	// Loading means the user record has not arrived yet.
	Loading Phase = iota
	// Editing means the form is shown and accepts input.
	Editing
	// Submitting means the update is in flight.
	Submitting
	// Submitted means the update succeeded.
	Submitted
	// Failed means the update was rejected or errored.
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Condition names a validation failure.
type Condition string

const (
	TooShort      Condition = "too_short"
	TooLong       Condition = "too_long"
	InvalidChoice Condition = "invalid_choice"
)

// FieldError is the validation failure of one input.
type FieldError struct {
	Condition Condition
	Message   string
}

// Errors maps field names to their validation failure.
type Errors map[string]FieldError

// For returns the error of field, or nil. Templates call it per input.
func (e Errors) For(field string) *FieldError {
	fe, ok := e[field]
	if !ok {
		return nil
	}
	return &fe
}

// Values is the working copy of every editable field.
type Values struct {
	FirstName string
	LastName  string
	Enabled   bool
	Org       user.Org
	Role      user.Role
}

// ValuesOf copies the editable fields of u.
func ValuesOf(u user.User) Values {
	return Values{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Enabled:   u.Enabled,
		Org:       u.Org,
		Role:      u.Role,
	}
}

// Validate checks every field in one pass. The result is empty when v is valid.
func (v Values) Validate() Errors {
	errs := Errors{}

	if fe, ok := checkName("First Name", v.FirstName); !ok {
		errs[FieldFirstName] = fe
	}
	if fe, ok := checkName("Last Name", v.LastName); !ok {
		errs[FieldLastName] = fe
	}
	if !v.Org.Valid() {
		errs[FieldOrg] = FieldError{Condition: InvalidChoice, Message: "Pick one of the listed organizations"}
	}
	if !v.Role.Valid() {
		errs[FieldRole] = FieldError{Condition: InvalidChoice, Message: "Pick one of the listed roles"}
	}

	return errs
}

func checkName(label, name string) (FieldError, bool) {
	switch n := utf8.RuneCountInString(name); {
	case n < MinNameLength:
		return FieldError{
			Condition: TooShort,
			Message:   fmt.Sprintf("%s must have at least %d characters", label, MinNameLength),
		}, false
	case n > MaxNameLength:
		return FieldError{
			Condition: TooLong,
			Message:   fmt.Sprintf("%s must have at most %d characters", label, MaxNameLength),
		}, false
	}
	return FieldError{}, true
}

// Form is the edit state of one loaded user.
type Form struct {
	user    user.User
	values  Values
	errors  Errors
	phase   Phase
	failure error
}

// New seeds a form from the loaded record.
func New(loaded user.User) *Form {
	return &Form{
		user:   loaded,
		values: ValuesOf(loaded),
		errors: Errors{},
		phase:  Editing,
	}
}

// User is the record the form was seeded from.
func (f *Form) User() user.User { return f.user }

// Values is the current working copy.
func (f *Form) Values() Values { return f.values }

// Errors is the result of the last submit attempt.
func (f *Form) Errors() Errors { return f.errors }

// Phase is the current lifecycle phase.
func (f *Form) Phase() Phase { return f.phase }

// Failure is the error that moved the form to Failed.
func (f *Form) Failure() error { return f.failure }

// Edit replaces the working copy. Errors from an earlier attempt are kept until
// the next Submit.
func (f *Form) Edit(v Values) {
	f.values = v
}

// Submit validates the working copy. On success it returns the full record to
// write, with ID and Email taken from the loaded user, and moves to Submitting.
// On failure the form stays editable and no record is returned.
func (f *Form) Submit() (user.User, bool) {
	f.errors = f.values.Validate()
	if len(f.errors) > 0 {
		f.phase = Editing
		return user.User{}, false
	}

	f.phase = Submitting
	f.failure = nil
	return user.User{
		ID:        f.user.ID,
		FirstName: f.values.FirstName,
		LastName:  f.values.LastName,
		Email:     f.user.Email,
		Enabled:   f.values.Enabled,
		Org:       f.values.Org,
		Role:      f.values.Role,
	}, true
}

// Succeed records that the update was stored.
func (f *Form) Succeed() {
	f.phase = Submitted
}

// Fail records that the update did not go through. The working copy is kept so
// the user can retry.
func (f *Form) Fail(err error) {
	f.phase = Failed
	f.failure = err
}
