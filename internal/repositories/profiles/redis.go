package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// Hash fields of a stored profile
const (
	fieldID               = "id"
	fieldFirstName        = "first_name"
	fieldName             = "name"
	fieldDisplayName      = "display_name"
	fieldGender           = "gender"
	fieldBio              = "bio"
	fieldHighlightColor   = "highlight_color"
	fieldProfilePicture   = "profile_picture"
	fieldInterests        = "interests"
	fieldAvailability     = "availability"
	fieldProfileCompleted = "profile_completed"
	fieldUpdatedAt        = "updated_at"
)

// createScript writes the hash only when the key is absent
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

// mergeScript writes the hash only when the key is present, so a record
// deleted mid-merge is never recreated from a partial update
var mergeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

// RedisRepoConfig configures the Redis repository
type RedisRepoConfig struct {
	Client       redis.UniversalClient
	KeyPrefix    string
	TimeProvider TimeProvider
}

// redisRepo stores each profile as a hash. The existence check and the HSET
// run together in one script, which Redis applies atomically.
type redisRepo struct {
	client       redis.UniversalClient
	prefix       string
	timeProvider TimeProvider
}

// NewRedisRepository creates a Redis-backed profile repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "profile:"
	}
	timeProvider := cfg.TimeProvider
	if timeProvider == nil {
		timeProvider = SystemTime()
	}
	return &redisRepo{
		client:       cfg.Client,
		prefix:       prefix,
		timeProvider: timeProvider,
	}
}

func (r *redisRepo) key(id string) string {
	return r.prefix + id
}

// Create stores a new profile hash
func (r *redisRepo) Create(ctx context.Context, record *profile.Record) error {
	if record == nil {
		return apperr.InvalidArgument("record cannot be nil")
	}
	if record.ID == "" {
		return apperr.InvalidArgument("record ID is required")
	}

	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.timeProvider.Now()
	}

	fields := []any{
		fieldID, record.ID,
		fieldFirstName, record.FirstName,
	}
	update := &profile.Update{
		ProfileCompleted: profile.Ptr(record.ProfileCompleted),
		Name:             profile.Ptr(record.Name),
		DisplayName:      profile.Ptr(record.DisplayName),
		Gender:           profile.Ptr(record.Gender),
		Bio:              profile.Ptr(record.Bio),
		HighlightColor:   profile.Ptr(record.HighlightColor),
		ProfilePicture:   profile.Ptr(record.ProfilePicture),
		Interests:        record.Interests,
		Availability:     record.Availability,
	}
	encoded, err := encodeUpdate(update, updatedAt)
	if err != nil {
		return err
	}
	fields = append(fields, encoded...)

	written, err := createScript.Run(ctx, r.client, []string{r.key(record.ID)}, fields...).Int()
	if err != nil {
		return apperr.Unavailable(err, "failed to store profile in redis").
			WithMeta("profile_id", record.ID)
	}
	if written == 0 {
		return apperr.AlreadyExistsf("profile '%s' already exists", record.ID).
			WithMeta("profile_id", record.ID)
	}

	return nil
}

// Get reads a profile hash
func (r *redisRepo) Get(ctx context.Context, id string) (*profile.Record, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("profile ID is required")
	}

	values, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, apperr.Unavailable(err, "failed to read profile from redis").
			WithMeta("profile_id", id)
	}
	if len(values) == 0 {
		return nil, apperr.NotFoundf("profile '%s' not found", id).
			WithMeta("profile_id", id)
	}

	record, err := decodeRecord(values)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to decode profile '%s'", id)
	}
	if record.ID == "" {
		record.ID = id
	}

	return record, nil
}

// Merge writes every field of the update with one HSET, guarded by an
// existence check in the same script
func (r *redisRepo) Merge(ctx context.Context, id string, update *profile.Update) error {
	if id == "" {
		return apperr.InvalidArgument("profile ID is required")
	}
	if update.IsEmpty() {
		return apperr.InvalidArgument("update has no fields")
	}

	fields, err := encodeUpdate(update, r.timeProvider.Now())
	if err != nil {
		return err
	}

	written, err := mergeScript.Run(ctx, r.client, []string{r.key(id)}, fields...).Int()
	if err != nil {
		return apperr.Unavailable(err, "failed to merge profile in redis").
			WithMeta("profile_id", id)
	}
	if written == 0 {
		return apperr.NotFoundf("profile '%s' not found", id).
			WithMeta("profile_id", id)
	}

	return nil
}

// encodeUpdate flattens an update into HSET arguments in a fixed order
func encodeUpdate(update *profile.Update, now time.Time) ([]any, error) {
	var fields []any

	if update.ProfileCompleted != nil {
		fields = append(fields, fieldProfileCompleted, strconv.FormatBool(*update.ProfileCompleted))
	}
	if update.Name != nil {
		fields = append(fields, fieldName, *update.Name)
	}
	if update.DisplayName != nil {
		fields = append(fields, fieldDisplayName, *update.DisplayName)
	}
	if update.Gender != nil {
		fields = append(fields, fieldGender, string(*update.Gender))
	}
	if update.Bio != nil {
		fields = append(fields, fieldBio, *update.Bio)
	}
	if update.HighlightColor != nil {
		fields = append(fields, fieldHighlightColor, string(*update.HighlightColor))
	}
	if update.ProfilePicture != nil {
		fields = append(fields, fieldProfilePicture, *update.ProfilePicture)
	}
	if update.Interests != nil {
		data, err := json.Marshal(update.Interests)
		if err != nil {
			return nil, apperr.Wrap(err, "failed to marshal interests")
		}
		fields = append(fields, fieldInterests, string(data))
	}
	if update.Availability != nil {
		data, err := json.Marshal(update.Availability)
		if err != nil {
			return nil, apperr.Wrap(err, "failed to marshal availability")
		}
		fields = append(fields, fieldAvailability, string(data))
	}

	fields = append(fields, fieldUpdatedAt, now.UTC().Format(time.RFC3339Nano))
	return fields, nil
}

func decodeRecord(values map[string]string) (*profile.Record, error) {
	record := &profile.Record{
		ID:             values[fieldID],
		FirstName:      values[fieldFirstName],
		Name:           values[fieldName],
		DisplayName:    values[fieldDisplayName],
		Gender:         profile.Gender(values[fieldGender]),
		Bio:            values[fieldBio],
		HighlightColor: profile.HighlightColor(values[fieldHighlightColor]),
		ProfilePicture: values[fieldProfilePicture],
	}

	if v := values[fieldProfileCompleted]; v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("profile_completed: %w", err)
		}
		record.ProfileCompleted = completed
	}
	if v := values[fieldInterests]; v != "" {
		if err := json.Unmarshal([]byte(v), &record.Interests); err != nil {
			return nil, fmt.Errorf("interests: %w", err)
		}
	}
	if v := values[fieldAvailability]; v != "" {
		if err := json.Unmarshal([]byte(v), &record.Availability); err != nil {
			return nil, fmt.Errorf("availability: %w", err)
		}
	}
	if v := values[fieldUpdatedAt]; v != "" {
		updatedAt, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("updated_at: %w", err)
		}
		record.UpdatedAt = updatedAt
	}

	return record, nil
}
