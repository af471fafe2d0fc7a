package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/roombook/internal/persistence"
)

// defaultResetPassword is assigned when an administrator resets an account.
// The user is expected to change it on next login.
const defaultResetPassword = "123456"

// UserRepository captures the persistence interactions needed by the service.
type UserRepository interface {
	CreateUser(ctx context.Context, credentials UserCredentials) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserCredentials(ctx context.Context, id string) (UserCredentials, error)
	GetUserByEmail(ctx context.Context, email string) (UserCredentials, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]User, error)
	CountBookingsForUser(ctx context.Context, userID string) (int, error)
}

// UserService manages accounts: public registration, administrator CRUD, and
// self-service profile changes.
type UserService struct {
	users        UserRepository
	idGenerator  func() string
	now          func() time.Time
	hashPassword func(password string) (string, error)
	logger       *slog.Logger
}

// NewUserService wires dependencies for account operations.
func NewUserService(users UserRepository, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		hashPassword: func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		},
		logger: defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// Register creates an account through the public sign-up flow. New accounts
// always receive the teacher role.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Register")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to register user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user registered")
	}()

	vErr := &ValidationError{}
	name := strings.TrimSpace(params.Name)
	email := normalizeEmail(params.Email)
	validateName(name, vErr)
	validateEmail(email, vErr)
	validatePassword(params.Password, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	user, err = s.createAccount(ctx, UserInput{
		Name:     name,
		Email:    email,
		Password: params.Password,
		Role:     RoleTeacher,
	})
	return
}

// CreateUser creates an account on behalf of an administrator.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if input.Role == "" {
		input.Role = RoleTeacher
	}

	vErr := &ValidationError{}
	validateName(input.Name, vErr)
	validateEmail(input.Email, vErr)
	validatePassword(input.Password, vErr)
	if !input.Role.Valid() {
		vErr.add("role", "role must be ADMIN or TEACHER")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	user, err = s.createAccount(ctx, input)
	return
}

func (s *UserService) createAccount(ctx context.Context, input UserInput) (User, error) {
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	passwordHash, err := s.hashPassword(input.Password)
	if err != nil {
		return User{}, err
	}

	createdAt := s.now()
	credentials := UserCredentials{
		User: User{
			ID:        s.idGenerator(),
			Name:      input.Name,
			Email:     input.Email,
			Role:      input.Role,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		PasswordHash: passwordHash,
	}

	user, err := s.users.CreateUser(ctx, credentials)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return user, nil
}

// GetUser fetches a single account for an administrator.
func (s *UserService) GetUser(ctx context.Context, principal Principal, id string) (User, error) {
	if s == nil || s.users == nil {
		return User{}, ErrNotFound
	}
	if !principal.IsAdmin() {
		return User{}, ErrUnauthorized
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return user, nil
}

// ListUsers enumerates accounts for an administrator.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil || s.users == nil {
		return nil, nil
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return users, nil
}

// UpdateUser applies a partial update to an account. Nil patch fields keep
// their stored values. Administrators cannot demote their own account.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateUser",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user updated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	var existing User
	existing, err = s.users.GetUser(ctx, params.UserID)
	if err != nil {
		err = mapUserRepoError(err)
		return
	}

	patch := params.Patch
	if patch.Name != nil {
		existing.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		existing.Email = normalizeEmail(*patch.Email)
	}
	if patch.Role != nil {
		existing.Role = *patch.Role
	}

	vErr := &ValidationError{}
	validateName(existing.Name, vErr)
	validateEmail(existing.Email, vErr)
	if !existing.Role.Valid() {
		vErr.add("role", "role must be ADMIN or TEACHER")
	}
	if params.UserID == params.Principal.UserID && existing.Role != RoleAdmin {
		vErr.add("role", "cannot change the role of your own account")
	}
	if patch.Password != nil {
		validatePassword(*patch.Password, vErr)
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	existing.UpdatedAt = s.now()

	var persisted User
	persisted, err = s.users.UpdateUser(ctx, existing)
	if err != nil {
		err = mapUserRepoError(err)
		return
	}

	if patch.Password != nil {
		var passwordHash string
		passwordHash, err = s.hashPassword(*patch.Password)
		if err != nil {
			return
		}
		if err = s.users.UpdatePassword(ctx, params.UserID, passwordHash); err != nil {
			err = mapUserRepoError(err)
			return
		}
	}

	user = persisted
	return
}

// DeleteUser removes an account. Administrators cannot delete their own
// account, and accounts that still own bookings are protected.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteUser",
		"principal_id", principal.UserID,
		"user_id", id,
	)

	if !principal.IsAdmin() {
		logger.ErrorContext(ctx, "user deletion rejected", "error_kind", "unauthorized")
		return ErrUnauthorized
	}

	if id == principal.UserID {
		vErr := &ValidationError{}
		vErr.add("id", "cannot delete your own account")
		logger.ErrorContext(ctx, "user deletion rejected", "error_kind", "validation")
		return vErr
	}

	if _, err := s.users.GetUser(ctx, id); err != nil {
		err = mapUserRepoError(err)
		logger.ErrorContext(ctx, "failed to load user", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	count, err := s.users.CountBookingsForUser(ctx, id)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count bookings", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if count > 0 {
		logger.With("booking_count", count).ErrorContext(ctx, "user deletion rejected", "error_kind", "in_use")
		return ErrUserInUse
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		err = mapUserRepoError(err)
		logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "user deleted")
	return nil
}

// ResetPassword sets another user's password back to the well-known default.
// Administrators change their own password through ChangePassword instead.
func (s *UserService) ResetPassword(ctx context.Context, principal Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "ResetPassword",
		"principal_id", principal.UserID,
		"user_id", userID,
	)

	if !principal.IsAdmin() {
		logger.ErrorContext(ctx, "password reset rejected", "error_kind", "unauthorized")
		return ErrUnauthorized
	}

	if userID == principal.UserID {
		vErr := &ValidationError{}
		vErr.add("id", "use the password change form for your own account")
		logger.ErrorContext(ctx, "password reset rejected", "error_kind", "validation")
		return vErr
	}

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		err = mapUserRepoError(err)
		logger.ErrorContext(ctx, "failed to load user", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	passwordHash, err := s.hashPassword(defaultResetPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		err = mapUserRepoError(err)
		logger.ErrorContext(ctx, "failed to reset password", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "password reset")
	return nil
}

// GetProfile returns the account of the authenticated principal.
func (s *UserService) GetProfile(ctx context.Context, principal Principal) (User, error) {
	if s == nil || s.users == nil {
		return User{}, ErrNotFound
	}
	if principal.UserID == "" {
		return User{}, ErrUnauthorized
	}
	user, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return user, nil
}

// UpdateProfile lets an authenticated user edit their own name and email.
func (s *UserService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateProfile",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update profile", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile updated")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	name := strings.TrimSpace(params.Name)
	email := normalizeEmail(params.Email)

	vErr := &ValidationError{}
	validateName(name, vErr)
	validateEmail(email, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var existing User
	existing, err = s.users.GetUser(ctx, params.Principal.UserID)
	if err != nil {
		err = mapUserRepoError(err)
		return
	}

	existing.Name = name
	existing.Email = email
	existing.UpdatedAt = s.now()

	var persisted User
	persisted, err = s.users.UpdateUser(ctx, existing)
	if err != nil {
		err = mapUserRepoError(err)
		return
	}

	user = persisted
	return
}

// ChangePassword lets an authenticated user rotate their own password after
// proving knowledge of the current one.
func (s *UserService) ChangePassword(ctx context.Context, params ChangePasswordParams) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "ChangePassword",
		"principal_id", params.Principal.UserID,
	)

	if params.Principal.UserID == "" {
		logger.ErrorContext(ctx, "password change rejected", "error_kind", "unauthorized")
		return ErrUnauthorized
	}

	vErr := &ValidationError{}
	if params.CurrentPassword == "" {
		vErr.add("current_password", "current password is required")
	}
	validatePasswordField(params.NewPassword, "new_password", vErr)
	if vErr.HasErrors() {
		logger.ErrorContext(ctx, "password change rejected", "error_kind", "validation")
		return vErr
	}

	credentials, err := s.users.GetUserCredentials(ctx, params.Principal.UserID)
	if err != nil {
		err = mapUserRepoError(err)
		logger.ErrorContext(ctx, "failed to load credentials", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := VerifyPassword(credentials.PasswordHash, params.CurrentPassword); err != nil {
		logger.ErrorContext(ctx, "password change rejected", "error_kind", "invalid_credentials")
		return ErrInvalidCredentials
	}

	passwordHash, err := s.hashPassword(params.NewPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, params.Principal.UserID, passwordHash); err != nil {
		err = mapUserRepoError(err)
		logger.ErrorContext(ctx, "failed to change password", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "password changed")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string, vErr *ValidationError) {
	if name == "" {
		vErr.add("name", "name is required")
		return
	}
	if len(strings.TrimSpace(name)) < 3 {
		vErr.add("name", "name must be at least 3 characters")
	}
}

func validateEmail(email string, vErr *ValidationError) {
	if email == "" {
		vErr.add("email", "email is required")
		return
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		vErr.add("email", "email must be a valid address")
	}
}

func validatePassword(password string, vErr *ValidationError) {
	validatePasswordField(password, "password", vErr)
}

func validatePasswordField(password, field string, vErr *ValidationError) {
	if len(password) < 6 {
		vErr.add(field, "password must be at least 6 characters")
	}
}

func mapUserRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrUserInUse
	}
	return err
}
