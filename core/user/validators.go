package user

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/hatag-tech/elearning/core"
)

//go:embed common-passwords.txt
var commonPasswordsTxt []byte

var (
	selfRoleTag  = "selfrole"
	selfRoleText = "role must be one of Student or Instructor"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = "password is too common"
	commonPasswords = loadCommonPasswords()
)

// passwordChange validates a new password against the account it belongs to.
type passwordChange struct {
	Password string `json:"password" validate:"required"`
	Username string `json:"-"`
	Email    string `json:"-"`
}

func loadCommonPasswords() []string {
	pwds := make([]string, 0, 128)
	scanner := bufio.NewScanner(bytes.NewReader(commonPasswordsTxt))
	for scanner.Scan() {
		if pwd := strings.TrimSpace(scanner.Text()); pwd != "" && !strings.HasPrefix(pwd, "#") {
			pwds = append(pwds, strings.ToLower(pwd))
		}
	}
	sort.Strings(pwds)
	return pwds
}

// registerValidators registers the user validators & their translations on v.
func registerValidators(v *core.Validator) {
	_ = v.Engine().RegisterValidation(selfRoleTag, selfRoleValidation)
	v.RegisterCustomTranslation(selfRoleTag, selfRoleText)

	v.Engine().RegisterStructValidation(userStructValidation, NewUser{}, passwordChange{})
	v.RegisterCustomTranslation(pwdMinLenTag, pwdMinLenText)
	v.RegisterCustomTranslation(pwdNoSpaceTag, pwdNoSpaceText)
	v.RegisterCustomTranslation(pwdNotAllNumTag, pwdNotAllNumText)
	v.RegisterCustomTranslation(pwdComplexityTag, pwdComplexityText)
	v.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
	v.RegisterCustomTranslation(pwdNoCommonTag, pwdNoCommonText)
}

// Custom Validators

// selfRoleValidation only allows the roles open to self-registration.
func selfRoleValidation(fl validator.FieldLevel) bool {
	switch Role(fl.Field().String()) {
	case RoleStudent, RoleInstructor:
		return true
	}
	return false
}

// userStructValidation does struct level validation on NewUser and passwordChange structs.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewUser:
		if usr.Password != "" {
			validatePassword(usr.Password, usr.Username, usr.Email, sl)
		}
	case passwordChange:
		if usr.Password != "" {
			validatePassword(usr.Password, usr.Username, usr.Email, sl)
		}
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no user attrs similarity
// - no common password
func validatePassword(pwd, uname, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	var (
		digitCount         int
		hasUpper, hasLower bool
	)

	chars := []rune(pwd)
	if len(chars) < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range chars {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	if digitCount == len(chars) {
		reportErr(pwdNotAllNumTag)
		return
	}

	if !(hasUpper && hasLower && digitCount > 0 && specialRegex.MatchString(pwd)) {
		reportErr(pwdComplexityTag)
		return
	}

	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	if getRatio(pwd, uname) >= pwdMaxSim || getRatio(pwd, email) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
		return
	}

	lpwd := strings.ToLower(pwd)
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) {
		if commonPasswords[idx] == lpwd {
			reportErr(pwdNoCommonTag)
		}
	}
}
