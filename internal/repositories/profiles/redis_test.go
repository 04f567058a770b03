package profiles_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/profiles"
	mockprofiles "github.com/KirkDiggler/profile-onboarding/internal/repositories/profiles/mock"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mock         redismock.ClientMock
	mockCtrl     *gomock.Controller
	timeProvider *mockprofiles.MockTimeProvider
	repo         profiles.Repository
	ctx          context.Context
	now          time.Time
}

func (s *RedisRepoTestSuite) SetupTest() {
	client, mock := redismock.NewClientMock()
	s.mock = mock
	s.mockCtrl = gomock.NewController(s.T())
	s.timeProvider = mockprofiles.NewMockTimeProvider(s.mockCtrl)
	s.repo = profiles.NewRedisRepository(&profiles.RedisRepoConfig{
		Client:       client,
		TimeProvider: s.timeProvider,
	})
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) TestMerge_WritesOneHSet() {
	s.timeProvider.EXPECT().Now().Return(s.now)
	update := &profile.Update{
		ProfileCompleted: profile.Ptr(true),
		Name:             profile.Ptr("Ada"),
		Bio:              profile.Ptr("Hello"),
		Interests:        []string{"Mathematics"},
		Availability:     map[string]map[string]bool{"Wednesday": {"Evening": true}},
	}

	s.mock.ExpectEvalSha(profiles.MergeScriptHash, []string{"profile:user-1"},
		"profile_completed", "true",
		"name", "Ada",
		"bio", "Hello",
		"interests", `["Mathematics"]`,
		"availability", `{"Wednesday":{"Evening":true}}`,
		"updated_at", "2024-03-14T15:09:26Z",
	).SetVal(int64(1))

	err := s.repo.Merge(s.ctx, "user-1", update)
	s.NoError(err)
}

func (s *RedisRepoTestSuite) TestMerge_MissingRecordIsNotCreated() {
	s.timeProvider.EXPECT().Now().Return(s.now)
	s.mock.ExpectEvalSha(profiles.MergeScriptHash, []string{"profile:ghost"},
		"name", "x",
		"updated_at", "2024-03-14T15:09:26Z",
	).SetVal(int64(0))

	err := s.repo.Merge(s.ctx, "ghost", &profile.Update{Name: profile.Ptr("x")})

	s.True(apperr.IsNotFound(err))
	s.Equal("ghost", apperr.GetMeta(err)["profile_id"])
}

func (s *RedisRepoTestSuite) TestMerge_StoreFailure() {
	s.timeProvider.EXPECT().Now().Return(s.now)
	s.mock.ExpectEvalSha(profiles.MergeScriptHash, []string{"profile:user-1"},
		"name", "Ada",
		"updated_at", "2024-03-14T15:09:26Z",
	).SetErr(errors.New("connection reset"))

	err := s.repo.Merge(s.ctx, "user-1", &profile.Update{Name: profile.Ptr("Ada")})

	s.True(apperr.IsUnavailable(err))
}

func (s *RedisRepoTestSuite) TestMerge_InputValidation() {
	s.True(apperr.IsInvalidArgument(s.repo.Merge(s.ctx, "", &profile.Update{Name: profile.Ptr("x")})))
	s.True(apperr.IsInvalidArgument(s.repo.Merge(s.ctx, "user-1", &profile.Update{})))
}

func (s *RedisRepoTestSuite) TestGet() {
	s.mock.ExpectHGetAll("profile:user-1").SetVal(map[string]string{
		"id":                "user-1",
		"first_name":        "Ada",
		"name":              "Ada L.",
		"gender":            "female",
		"highlight_color":   "#FF6347",
		"interests":         `["Physics"]`,
		"availability":      `{"Monday":{"Morning":true}}`,
		"profile_completed": "true",
		"updated_at":        "2024-03-14T15:09:26Z",
	})

	record, err := s.repo.Get(s.ctx, "user-1")

	s.Require().NoError(err)
	s.Equal("Ada", record.FirstName)
	s.Equal("Ada L.", record.Name)
	s.Equal(profile.GenderFemale, record.Gender)
	s.Equal([]string{"Physics"}, record.Interests)
	s.True(record.Availability["Monday"]["Morning"])
	s.True(record.ProfileCompleted)
	s.True(s.now.Equal(record.UpdatedAt))
}

func (s *RedisRepoTestSuite) TestGet_NotFound() {
	s.mock.ExpectHGetAll("profile:ghost").SetVal(map[string]string{})

	_, err := s.repo.Get(s.ctx, "ghost")

	s.True(apperr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestGet_StoreFailure() {
	s.mock.ExpectHGetAll("profile:user-1").SetErr(errors.New("timeout"))

	_, err := s.repo.Get(s.ctx, "user-1")

	s.True(apperr.IsUnavailable(err))
}

func (s *RedisRepoTestSuite) createArgs() []any {
	return []any{
		"id", "user-1",
		"first_name", "Ada",
		"profile_completed", "false",
		"name", "",
		"display_name", "",
		"gender", "",
		"bio", "",
		"highlight_color", "",
		"profile_picture", "",
		"updated_at", "2024-03-14T15:09:26Z",
	}
}

func (s *RedisRepoTestSuite) TestCreate() {
	s.mock.ExpectEvalSha(profiles.CreateScriptHash, []string{"profile:user-1"}, s.createArgs()...).
		SetVal(int64(1))

	err := s.repo.Create(s.ctx, &profile.Record{ID: "user-1", FirstName: "Ada", UpdatedAt: s.now})
	s.NoError(err)
}

func (s *RedisRepoTestSuite) TestCreate_AlreadyExists() {
	s.mock.ExpectEvalSha(profiles.CreateScriptHash, []string{"profile:user-1"}, s.createArgs()...).
		SetVal(int64(0))

	err := s.repo.Create(s.ctx, &profile.Record{ID: "user-1", FirstName: "Ada", UpdatedAt: s.now})

	s.True(apperr.IsAlreadyExists(err))
}
