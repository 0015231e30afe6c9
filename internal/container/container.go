package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edugrant/config"
	"github.com/oksasatya/edugrant/internal/application"
	repo "github.com/oksasatya/edugrant/internal/domain/repository"
	"github.com/oksasatya/edugrant/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager
	cookies    *helpers.Manager

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client

	services *Services
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetGCS(s *storage.Client)     { gcsClient = s }
func GetGCS() *storage.Client      { return gcsClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetCookies(m *helpers.Manager) { cookies = m }
func GetCookies() *helpers.Manager {
	if cookies != nil {
		return cookies
	}
	return helpers.NewCookie("session_token", "", false)
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
func SetServices(s *Services)                 { services = s }
func GetServices() *Services                  { return services }

// Stores groups the persistence ports; postgres and memory both provide them.
type Stores struct {
	Identities    repo.IdentityRepository
	Codes         repo.OneTimeCodeStore
	Denylist      repo.SessionDenylist
	Scholarships  repo.ScholarshipRepository
	Applications  repo.ApplicationRepository
	Notifications repo.NotificationRepository
}

// Adapters are the optional outbound integrations. Leave a field nil to disable it.
type Adapters struct {
	Sender    application.CodeSender
	Index     application.ScholarshipIndex
	Avatars   application.AvatarStorage
	Completer application.Completer
}

type Services struct {
	Auth          *application.AuthService
	Scholarships  *application.ScholarshipService
	Applications  *application.ApplicationService
	Notifications *application.NotificationService
	Assistant     *application.AssistantService
}

// BuildServices wires the application services from the stores and adapters.
func BuildServices(c *config.Config, l *logrus.Logger, jwt *helpers.JWTManager, st Stores, ad Adapters) *Services {
	loc := c.Location()
	notifications := application.NewNotificationService(st.Notifications, st.Identities, st.Scholarships, loc, c.DeadlineLeadDays, l)
	return &Services{
		Auth:          application.NewAuthService(st.Identities, st.Codes, st.Denylist, ad.Sender, jwt, ad.Avatars, c.OTPTTL, l),
		Scholarships:  application.NewScholarshipService(st.Scholarships, notifications, ad.Index, loc, l),
		Applications:  application.NewApplicationService(st.Applications, st.Scholarships, notifications, l),
		Notifications: notifications,
		Assistant:     application.NewAssistantService(st.Scholarships, ad.Completer, c.AssistantContextLimit, c.AssistantTimeout, l),
	}
}
