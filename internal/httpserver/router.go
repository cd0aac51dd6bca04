package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"figurinha-studio/internal/domain"
	orderrepo "figurinha-studio/internal/repository/order"
	categorysvc "figurinha-studio/internal/service/category"
	identitysvc "figurinha-studio/internal/service/identity"
	"figurinha-studio/internal/service/notify"
	ordersvc "figurinha-studio/internal/service/order"
	packsvc "figurinha-studio/internal/service/pack"
	"figurinha-studio/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type packService interface {
	List(ctx context.Context, categoryID string) ([]domain.Pack, error)
	Get(ctx context.Context, id string) (*domain.Pack, error)
	Create(ctx context.Context, adminID string, in packsvc.Input) (*domain.Pack, error)
	Update(ctx context.Context, id string, in packsvc.Input) (*domain.Pack, error)
	Delete(ctx context.Context, id string) error
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	ListWithCounts(ctx context.Context) ([]domain.CategoryCount, error)
	Create(ctx context.Context, in categorysvc.Input) (*domain.Category, error)
	Update(ctx context.Context, id string, in categorysvc.Input) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type cartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Add(ctx context.Context, userID, packID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID, packID string, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, userID, packID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
}

type orderService interface {
	Checkout(ctx context.Context, userID string, in ordersvc.CheckoutInput) (*domain.Order, error)
	Approve(ctx context.Context, adminID, orderID, paymentLink string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID string) (*domain.Order, error)
	RequestDelivery(ctx context.Context, userID, orderID, phone, confirmation string) error
	Download(ctx context.Context, userID, orderID, itemID string) (string, error)
	ListMine(ctx context.Context, userID string) ([]ordersvc.View, error)
	ListAll(ctx context.Context) ([]ordersvc.View, error)
	Stats(ctx context.Context) (orderrepo.Stats, error)
	Reconcile(ctx context.Context) ([]ordersvc.View, error)
}

type identityService interface {
	Signup(ctx context.Context, in identitysvc.SignupInput) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (*identitysvc.Session, error)
	ConfirmEmail(ctx context.Context, token string) error
	RequestRecovery(ctx context.Context, email, redirectTo string) error
	ResendConfirmation(ctx context.Context, email, redirectTo string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Authorize(ctx context.Context, bearer, requiredRole string) (identitysvc.Access, *domain.Profile, error)
}

type authMailer interface {
	SendAuthEmail(ctx context.Context, e notify.AuthEmail) error
}

type hookVerifier interface {
	ParseHook(h http.Header, body []byte) (notify.AuthEmail, error)
}

type objectStore interface {
	Root() string
	SaveImage(ctx context.Context, filename string, r io.Reader) (storage.Object, error)
	SaveArchive(ctx context.Context, filename string, r io.Reader) (storage.Object, error)
	Delete(ctx context.Context, bucket, name string) error
}

// Deps bundles the services the router dispatches to.
type Deps struct {
	PackSvc     packService
	CategorySvc categoryService
	CartSvc     cartService
	OrderSvc    orderService
	IdentitySvc identityService
	Mailer      authMailer
	Hooks       hookVerifier
	Storage     objectStore

	// CORSOrigins defaults to any origin when empty.
	CORSOrigins []string
	// RateLimitPerMinute applies per client IP to auth and webhook routes. Zero disables it.
	RateLimitPerMinute int
}

func (d Deps) validate() error {
	switch {
	case d.PackSvc == nil:
		return errors.New("pack service required")
	case d.CategorySvc == nil:
		return errors.New("category service required")
	case d.CartSvc == nil:
		return errors.New("cart service required")
	case d.OrderSvc == nil:
		return errors.New("order service required")
	case d.IdentitySvc == nil:
		return errors.New("identity service required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	if deps.Storage != nil {
		router.StaticFS("/storage", gin.Dir(deps.Storage.Root(), false))
	}

	h := &handlers{deps: deps, logger: logger}

	router.GET("/packs", h.listPacks)
	router.GET("/packs/:id", h.getPack)
	router.GET("/categories", h.listCategories)

	limited := router.Group("/")
	if deps.RateLimitPerMinute > 0 {
		limited.Use(newIPLimiter(deps.RateLimitPerMinute, time.Now).middleware())
	}
	auth := limited.Group("/auth")
	auth.POST("/signup", h.signup)
	auth.POST("/token", h.token)
	auth.POST("/confirm", h.confirm)
	auth.POST("/resend", h.resendConfirmation)
	auth.POST("/recover", h.recoverPassword)
	auth.POST("/reset", h.resetPassword)
	limited.Any("/hooks/send-auth-email", h.sendAuthEmail)

	me := router.Group("/me", requireRole(deps.IdentitySvc, domain.RoleCustomer))
	me.GET("", h.me)
	me.GET("/cart", h.getCart)
	me.POST("/cart/items", h.addCartItem)
	me.PUT("/cart/items/:packId", h.updateCartItem)
	me.DELETE("/cart/items/:packId", h.removeCartItem)
	me.DELETE("/cart", h.clearCart)
	me.POST("/checkout", h.checkout)
	me.GET("/orders", h.myOrders)
	me.POST("/orders/:id/whatsapp", h.requestWhatsApp)
	me.GET("/orders/:id/items/:itemId/download", h.download)

	admin := router.Group("/admin", requireRole(deps.IdentitySvc, domain.RoleAdmin))
	admin.GET("/stats", h.stats)
	admin.GET("/orders", h.allOrders)
	admin.GET("/orders/reconcile", h.reconcile)
	admin.POST("/orders/:id/approve", h.approve)
	admin.POST("/orders/:id/paid", h.markPaid)
	admin.GET("/packs", h.adminPacks)
	admin.POST("/packs", h.createPack)
	admin.PUT("/packs/:id", h.updatePack)
	admin.DELETE("/packs/:id", h.deletePack)
	admin.GET("/categories", h.adminCategories)
	admin.POST("/categories", h.createCategory)
	admin.PUT("/categories/:id", h.updateCategory)
	admin.DELETE("/categories/:id", h.deleteCategory)
	admin.POST("/uploads/images", h.uploadImage)
	admin.POST("/uploads/archives", h.uploadArchive)
	admin.DELETE("/uploads/:bucket/:name", h.deleteUpload)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "webhook-id", "webhook-timestamp", "webhook-signature"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
