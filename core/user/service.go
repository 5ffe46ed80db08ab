package user

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/volatiletech/null/v8"

	"github.com/hatag-tech/elearning/core"
)

var (
	// errors
	ErrNotFound         = errors.New("user not found")
	ErrEmailExists      = errors.New("a user with this email already exists")
	ErrProtectedAccount = errors.New("the master administrator account cannot be deleted")
)

// user-facing messages
const (
	msgAdminLoginInvalid  = "Invalid administration login attempt."
	msgAdminPasswordWrong = "Incorrect administrator password."
	msgPasswordWrong      = "Invalid password. Please try again."
	msgWrongRole          = "Incorrect role selected for this email."
	msgNotRegistered      = "Email not registered. Please sign up first."
	msgAdminRegistration  = "Self-registration for Admin accounts is restricted."
	msgEmailTaken         = "An account with this email already exists. Please login instead."
	msgRegistered         = "Account created successfully! You are now logged in."
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists if any account other than excludedIDs uses email.
		CheckEmailUniqueness(email string, excludedIDs ...string) error
		CreateUser(user User) (User, error)
		QueryAllUsers() []User
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		GetUserByEmailAndRole(email string, role Role) (User, error)
		UpdateUser(user User) (User, error)
		DeleteUserByID(id string) error
	}

	// SessionStore holds the single active session, persisted so that it survives a restart.
	SessionStore interface {
		Get() (User, bool)
		Set(usr User)
		Clear()
	}

	Service struct {
		repo      Repository
		session   SessionStore
		validator *core.Validator
		admin     core.AdminCredential
		logger    core.Logger
	}
)

func NewService(repo Repository, session SessionStore, validator *core.Validator, conf *core.Config, logger core.Logger) *Service {
	registerValidators(validator)
	svc := &Service{
		repo:      repo,
		session:   session,
		validator: validator,
		admin:     conf.Admin,
		logger:    logger,
	}
	svc.clearEphemeralPics()
	return svc
}

// clearEphemeralPics drops profile pictures that point at session-scoped handles.
func (svc *Service) clearEphemeralPics() {
	for _, usr := range svc.repo.QueryAllUsers() {
		if usr.Persistable().ProfilePic == usr.ProfilePic {
			continue
		}
		usr.ProfilePic = null.String{}
		if _, err := svc.repo.UpdateUser(usr); err != nil {
			svc.logger.Error(fmt.Sprintf("user.clearEphemeralPics(%s): %v", usr.ID, err), err)
		}
	}
	if cur, ok := svc.session.Get(); ok && cur.Persistable().ProfilePic != cur.ProfilePic {
		cur.ProfilePic = null.String{}
		svc.session.Set(cur)
	}
}

func (svc *Service) isMasterAdmin(usr User) bool {
	return usr.Role == RoleAdmin && (usr.ID == svc.admin.ID || usr.Email == svc.admin.Email)
}

// Login authenticates against the account set and opens the session on success.
func (svc *Service) Login(in LoginInput) (User, core.Result) {
	if in.Role == RoleAdmin {
		// the master email is matched exactly, without normalisation
		return svc.adminLogin(in.Email, in.Password)
	}

	email := core.CleanString(in.Email, true /* lower */)

	usr, err := svc.repo.GetUserByEmailAndRole(email, in.Role)
	if err != nil {
		if _, err := svc.repo.GetUserByEmail(email); err == nil {
			return User{}, core.Fail(msgWrongRole)
		}
		return User{}, core.Fail(msgNotRegistered)
	}
	if usr.HasPassword() && usr.CheckPassword(in.Password) != nil {
		return User{}, core.Fail(msgPasswordWrong)
	}

	usr = svc.stampLogin(usr)
	svc.session.Set(usr)
	return usr, core.Ok(fmt.Sprintf("Welcome back, %s!", usr.Email))
}

func (svc *Service) adminLogin(email, pwd string) (User, core.Result) {
	if email != svc.admin.Email {
		return User{}, core.Fail(msgAdminLoginInvalid)
	}
	if subtle.ConstantTimeCompare([]byte(pwd), []byte(svc.admin.Password)) != 1 {
		return User{}, core.Fail(msgAdminPasswordWrong)
	}

	usr, err := svc.FindMasterAdmin()
	if err != nil {
		// auto-provision the master account on first login
		now := core.Now()
		usr = User{
			ID:        svc.admin.ID,
			Email:     svc.admin.Email,
			Role:      RoleAdmin,
			Username:  svc.admin.Username,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if usr, err = svc.repo.CreateUser(usr); err != nil {
			svc.logger.Error(fmt.Sprintf("user.adminLogin: %v", err), err)
			return User{}, core.Fail(err.Error())
		}
		svc.logger.Info("master administrator account provisioned", map[string]interface{}{"id": usr.ID})
	}

	usr = svc.stampLogin(usr)
	svc.session.Set(usr)
	return usr, core.Ok(fmt.Sprintf("Welcome back, %s!", usr.DisplayName("Admin")))
}

func (svc *Service) stampLogin(usr User) User {
	usr.LastLogin = null.TimeFrom(core.Now())
	updated, err := svc.repo.UpdateUser(usr)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("user.stampLogin(%s): %v", usr.ID, err), err)
		return usr
	}
	return updated
}

// Register creates a Student or Instructor account and logs it in.
func (svc *Service) Register(nu NewUser) (User, core.Result) {
	if nu.Role == RoleAdmin {
		return User{}, core.Fail(msgAdminRegistration)
	}

	nu.clean()
	if err := svc.validator.Struct(nu); err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			return User{}, core.Fail(verr.Message())
		}
		return User{}, core.Fail(err.Error())
	}
	if err := svc.repo.CheckEmailUniqueness(nu.Email); err != nil {
		return User{}, core.Fail(msgEmailTaken)
	}

	now := core.Now()
	usr := User{
		ID:        core.NewID("u-"),
		Email:     nu.Email,
		Role:      nu.Role,
		Username:  nu.Username,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: null.TimeFrom(now),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, core.Fail(err.Error())
	}
	usr, err := svc.repo.CreateUser(usr)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return User{}, core.Fail(msgEmailTaken)
		}
		return User{}, core.Fail(err.Error())
	}

	svc.session.Set(usr)
	return usr, core.Ok(msgRegistered)
}

// Logout clears the session; the account is kept.
func (svc *Service) Logout() {
	svc.session.Clear()
}

// Current returns the logged in user, if any.
func (svc *Service) Current() (User, bool) {
	return svc.session.Get()
}

func (svc *Service) QueryAll() []User {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

// FindMasterAdmin returns the master administrator account, if it was provisioned.
func (svc *Service) FindMasterAdmin() (User, error) {
	if usr, err := svc.repo.GetUserByID(svc.admin.ID); err == nil && usr.Role == RoleAdmin {
		return usr, nil
	}
	usr, err := svc.repo.GetUserByEmailAndRole(svc.admin.Email, RoleAdmin)
	if err != nil {
		return User{}, ErrNotFound
	}
	return usr, nil
}

// Update merges the set fields of uu into the account and refreshes the session if needed.
func (svc *Service) Update(id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}

	uu.clean()
	if err = svc.validator.Struct(uu); err != nil {
		return User{}, err
	}

	if uu.Email != nil && *uu.Email != "" && *uu.Email != usr.Email {
		if err = svc.repo.CheckEmailUniqueness(*uu.Email, usr.ID); err != nil {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		usr.Email = *uu.Email
	}
	if uu.Username != nil {
		usr.Username = *uu.Username
	}
	if uu.ProfilePic != nil {
		usr.ProfilePic = *uu.ProfilePic
	}
	if uu.Bio != nil {
		usr.Bio = *uu.Bio
	}
	if uu.Password != nil {
		pc := passwordChange{Password: *uu.Password, Username: usr.Username, Email: usr.Email}
		if err = svc.validator.Struct(pc); err != nil {
			return User{}, err
		}
		if err = usr.SetPassword(*uu.Password); err != nil {
			return User{}, err
		}
	}
	usr.UpdatedAt = core.Now()

	if usr, err = svc.repo.UpdateUser(usr); err != nil {
		return User{}, err
	}
	if cur, ok := svc.session.Get(); ok && cur.ID == usr.ID {
		svc.session.Set(usr)
	}
	return usr, nil
}

func (svc *Service) ChangePassword(id, pwd string) error {
	_, err := svc.Update(id, UpdateUser{Password: &pwd})
	return err
}

// Delete removes the account and logs it out if it holds the session.
// The master administrator cannot be deleted.
func (svc *Service) Delete(id string) error {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return err
	}
	if svc.isMasterAdmin(usr) {
		return ErrProtectedAccount
	}
	if err = svc.repo.DeleteUserByID(id); err != nil {
		return err
	}
	if cur, ok := svc.session.Get(); ok && cur.ID == id {
		svc.Logout()
	}
	return nil
}
