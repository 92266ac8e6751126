package service

import (
	"aware_backend/internal/config"
	"aware_backend/internal/model"
	"aware_backend/internal/repository"
	"aware_backend/internal/util"
	"context"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users  *repository.UserRepository
	Tokens *repository.TokenRepository
	Config *config.Config
}

func NewAuthService(users *repository.UserRepository, tokens *repository.TokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, Config: cfg}
}

type RegisterReq struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email"`
	Role     string `json:"role" binding:"required"`
}

type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResp struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	TokenType   string `json:"token_type"`
}

func (s *AuthService) Register(req RegisterReq) (*model.User, error) {
	role := model.UserRole(req.Role)
	if !role.Valid() {
		return nil, util.ErrInvalidRole
	}

	existing, err := s.Users.FindByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, util.ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.Users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 校验口令后签发 JWT。每个用户同一时刻只允许一个活跃会话，
// jti 登记进 Redis，重复登录直接拒绝。
func (s *AuthService) Login(ctx context.Context, req LoginReq) (*TokenResp, error) {
	user, err := s.Users.FindByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	jti := model.GenerateUUID()
	registered, err := s.Tokens.Register(ctx, user.Username, jti, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, util.ErrAlreadyLoggedIn
	}

	token, err := util.GenerateJWT(user, jti, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	return &TokenResp{
		AccessToken: token,
		Role:        string(user.Role),
		TokenType:   "bearer",
	}, nil
}

// Logout 吊销 jti；已注销的 token 再次注销视为错误，与原有行为一致
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := util.ParseJWT(tokenString, s.Config.JWT.Secret)
	if err != nil {
		// token 本身无效，没有可吊销的会话
		return nil
	}

	revoked, err := s.Tokens.Revoke(ctx, claims.JTI)
	if err != nil {
		return err
	}
	if !revoked {
		return util.ErrTokenRevoked
	}
	return nil
}

func (s *AuthService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, util.ErrUserNotFound
	}
	return user, nil
}
