package services

import (
	"biometric_auth_ms/config"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

// Ceremony session data lives for one ceremony only. The TTL bounds abandoned
// ceremonies, deletion on first read makes the challenge single-use.
const ceremonyTTL = 5 * time.Minute

type IRedisService interface {
	SetRefreshToken(userId uint, refreshToken string) error
	GetRefreshToken(userId uint) (string, error)
	DelRefreshToken(userId uint)
	StoreRegistrationSessionRedis(userID uint, sessionData *webauthn.SessionData) error
	TakeRegistrationSessionRedis(userID uint) (*webauthn.SessionData, error)
	StoreLoginSessionRedis(sessionId string, sessionData *webauthn.SessionData) error
	TakeLoginSessionRedis(sessionId string) (*webauthn.SessionData, error)
}

type RedisService struct {
	rdb *redis.Client
}

func NewRedisService(rdb *redis.Client) *RedisService {
	return &RedisService{rdb: rdb}
}

func (s *RedisService) SetRefreshToken(userId uint, refreshToken string) error {
	return s.rdb.SetEx(ctx, fmt.Sprintf("refresh_%d", userId), refreshToken, time.Duration(config.Conf.Application.Security.TokenValidityInSecondsForRememberMe)*time.Second).Err()
}

func (s *RedisService) GetRefreshToken(userId uint) (string, error) {
	return s.rdb.Get(ctx, fmt.Sprintf("refresh_%d", userId)).Result()
}

func (s *RedisService) DelRefreshToken(userId uint) {
	s.rdb.Del(ctx, fmt.Sprintf("refresh_%d", userId))
}

func (s *RedisService) StoreRegistrationSessionRedis(userID uint, sessionData *webauthn.SessionData) error {
	data, err := json.Marshal(sessionData)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, fmt.Sprintf("webauthn:reg:%d", userID), data, ceremonyTTL).Err()
}

// TakeRegistrationSessionRedis fetches and deletes the stored ceremony session
// in one round trip so a challenge can never be accepted twice.
func (s *RedisService) TakeRegistrationSessionRedis(userID uint) (*webauthn.SessionData, error) {
	val, err := s.rdb.GetDel(ctx, fmt.Sprintf("webauthn:reg:%d", userID)).Result()
	if err != nil {
		return nil, err
	}
	var sessionData webauthn.SessionData
	if err := json.Unmarshal([]byte(val), &sessionData); err != nil {
		return nil, err
	}
	return &sessionData, nil
}

func (s *RedisService) StoreLoginSessionRedis(sessionId string, sessionData *webauthn.SessionData) error {
	data, err := json.Marshal(sessionData)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, fmt.Sprintf("webauthn:login:%s", sessionId), data, ceremonyTTL).Err()
}

func (s *RedisService) TakeLoginSessionRedis(sessionId string) (*webauthn.SessionData, error) {
	val, err := s.rdb.GetDel(ctx, fmt.Sprintf("webauthn:login:%s", sessionId)).Result()
	if err != nil {
		return nil, err
	}
	var sessionData webauthn.SessionData
	if err := json.Unmarshal([]byte(val), &sessionData); err != nil {
		return nil, err
	}
	return &sessionData, nil
}
