// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"time"

	"github.com/Sameerk99/mental-health-hub/internal/model"
	"github.com/Sameerk99/mental-health-hub/internal/repository"
	"github.com/Sameerk99/mental-health-hub/pkg/database"
	"github.com/Sameerk99/mental-health-hub/pkg/hash"
	"github.com/Sameerk99/mental-health-hub/pkg/log"
	"github.com/Sameerk99/mental-health-hub/pkg/token"
	"gorm.io/gorm"
)

// 用户相关的业务错误。
var (
	ErrUsernameTaken      = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// UserService 接口定义了所有与用户相关的业务操作。
type UserService interface {
	Register(username, email, password string) (*model.User, error)
	Login(username, password string) (accessToken, refreshToken string, err error)
	GetProfile(username string) (*model.User, error)
	UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error)
	Logout(ctx context.Context, tokenString string, userID uint) error
	RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error)
}

// UpdateProfileRequest 描述了修改个人信息的输入。
// 修改任何字段都需要提供当前密码。
type UpdateProfileRequest struct {
	Username    string
	Email       string
	OldPassword string
	NewPassword string
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo       repository.UserRepository
	sessionCtxRepo repository.SessionContextRepository
	jwtManager     *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, sessionCtxRepo repository.SessionContextRepository, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:       userRepo,
		sessionCtxRepo: sessionCtxRepo,
		jwtManager:     jwtManager,
	}
}

// Register 处理用户注册的业务逻辑。
func (s *userService) Register(username, email, password string) (*model.User, error) {
	// 1. 检查用户名是否已存在
	_, err := s.userRepo.FindByUsername(username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. 对密码进行哈希处理
	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	// 3. 创建新用户
	newUser := &model.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		// 邮箱唯一索引冲突也落到这里，对外统一为"已存在"
		log.Warnf("[UserService] 创建用户失败, username: %s, error: %v", username, err)
		return nil, ErrUsernameTaken
	}

	return newUser, nil
}

// Login 处理用户登录的业务逻辑。
func (s *userService) Login(username, password string) (accessToken, refreshToken string, err error) {
	// 1. 查找用户
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}

	// 2. 验证密码
	if !hash.CheckPasswordHash(password, user.Password) {
		return "", "", ErrInvalidCredentials
	}

	// 3. 生成 access token 和 refresh token
	accessToken, err = s.jwtManager.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.jwtManager.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// GetProfile 根据用户名获取用户详细信息。
func (s *userService) GetProfile(username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile 修改用户名/邮箱/密码。任何修改都需要先验证当前密码，
// 新用户名要求全局唯一。
func (s *userService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if !hash.CheckPasswordHash(req.OldPassword, user.Password) {
		return nil, ErrWrongPassword
	}

	if req.Username != "" && req.Username != user.Username {
		taken, err := s.userRepo.ExistsOtherWithUsername(req.Username, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		user.Username = req.Username
	}

	if req.Email != "" && req.Email != user.Email {
		user.Email = req.Email
	}

	if req.NewPassword != "" {
		hashedPassword, err := hash.HashPassword(req.NewPassword)
		if err != nil {
			return nil, err
		}
		user.Password = hashedPassword
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout 处理用户登出逻辑：将 token 加入 Redis 黑名单，
// 并销毁该会话的评估上下文（等价于会话终止）。
func (s *userService) Logout(ctx context.Context, tokenString string, userID uint) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return err
	}
	// token 的剩余有效期作为黑名单 key 的过期时间。
	expiration := time.Until(claims.ExpiresAt.Time)
	if err := database.RDB.Set(ctx, "blacklist:"+tokenString, "true", expiration).Err(); err != nil {
		return err
	}

	if err := s.sessionCtxRepo.Clear(ctx, userID); err != nil {
		// 黑名单已生效，上下文清理失败只记录不回滚
		log.Errorf("[UserService] 清理会话上下文失败, userID: %d, error: %v", userID, err)
	}
	return nil
}

// RefreshToken 使用有效的 refresh token 换取新的 token 对。
func (s *userService) RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error) {
	claims, err := s.jwtManager.VerifyToken(refreshTokenString)
	if err != nil {
		return "", "", err
	}

	// 确认用户仍然存在
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return "", "", err
	}

	newAccessToken, err = s.jwtManager.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", "", err
	}
	newRefreshToken, err = s.jwtManager.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return "", "", err
	}
	return newAccessToken, newRefreshToken, nil
}
