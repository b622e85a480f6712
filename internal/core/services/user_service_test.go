package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/atlastours/backoffice/internal/apperrors"
	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/internal/core/services"
	"github.com/atlastours/backoffice/internal/dto"
	"github.com/atlastours/backoffice/internal/utils"
)

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo)
}

func (suite *UserServiceTestSuite) TestCreateUser_HashesPassword() {
	ctx := context.Background()
	creatorID := uuid.NewString()
	req := dto.CreateUserRequest{Username: "mrivera", Name: "M. Rivera", Password: "s3cret-pw"}

	var savedUser domain.User
	suite.mockUserRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).
		Run(func(args mock.Arguments) {
			savedUser = args.Get(1).(domain.User)
		}).Return(nil).Once()

	user, err := suite.service.CreateUser(ctx, req, creatorID)

	suite.Require().NoError(err)
	suite.NotEmpty(user.UserID)
	suite.Equal("mrivera", user.Username)
	suite.NotEqual("s3cret-pw", savedUser.PasswordHash)
	suite.True(utils.CheckPasswordHash("s3cret-pw", savedUser.PasswordHash))
	suite.Equal(creatorID, savedUser.CreatedBy)
}

func (suite *UserServiceTestSuite) TestAuthenticate_Success() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-pw")
	suite.Require().NoError(err)
	stored := domain.User{UserID: uuid.NewString(), Username: "mrivera", PasswordHash: hash}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "mrivera").Return(&stored, nil).Once()

	user, err := suite.service.Authenticate(ctx, "mrivera", "correct-pw")

	suite.Require().NoError(err)
	suite.Equal(stored.UserID, user.UserID)
}

func (suite *UserServiceTestSuite) TestAuthenticate_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-pw")
	suite.Require().NoError(err)
	stored := domain.User{UserID: uuid.NewString(), Username: "mrivera", PasswordHash: hash}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "mrivera").Return(&stored, nil).Once()

	_, err = suite.service.Authenticate(ctx, "mrivera", "wrong-pw")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidCredentials)
}

func (suite *UserServiceTestSuite) TestAuthenticate_UnknownUser() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByUsername", ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Authenticate(ctx, "ghost", "whatever")

	suite.Require().Error(err)
	// Unknown users and wrong passwords are indistinguishable to the caller.
	suite.ErrorIs(err, services.ErrInvalidCredentials)
}

func (suite *UserServiceTestSuite) TestAuthenticate_DisabledUser() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-pw")
	suite.Require().NoError(err)
	stored := domain.User{UserID: uuid.NewString(), Username: "mrivera", PasswordHash: hash, Disabled: true}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "mrivera").Return(&stored, nil).Once()

	_, err = suite.service.Authenticate(ctx, "mrivera", "correct-pw")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidCredentials)
}

func (suite *UserServiceTestSuite) TestListUsers_DefaultLimit() {
	ctx := context.Background()

	suite.mockUserRepo.On("ListUsers", ctx, 20, 0).Return([]domain.User{}, nil).Once()

	_, err := suite.service.ListUsers(ctx, 0, -5)

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func TestUserService(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
