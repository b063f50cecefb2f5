package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Mongo   MongoConfig
	Catalog CatalogConfig
	Auth    AuthConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MongoConfig configuración del almacén documental. URI vacío activa el
// almacén en memoria (desarrollo y tests).
type MongoConfig struct {
	URI      string
	Database string
}

// CatalogConfig parámetros del motor de catálogo.
type CatalogConfig struct {
	PageSize        int // tamaño de página del listado principal
	BestSellerLimit int // top-N de más vendidos
}

// AuthConfig credenciales del administrador y firma JWT. La contraseña se
// configura como hash bcrypt, nunca en claro.
type AuthConfig struct {
	JWTSecret         string
	JWTIssuer         string
	JWTExpMinutes     int
	AdminEmail        string
	AdminPasswordHash string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, HTTP_PORT, MONGO_URI, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "tienda-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Mongo: MongoConfig{
			URI:      getString(v, "MONGO_URI", ""),
			Database: getString(v, "MONGO_DATABASE", "tienda"),
		},
		Catalog: CatalogConfig{
			PageSize:        getInt(v, "CATALOG_PAGE_SIZE", 12),
			BestSellerLimit: getInt(v, "CATALOG_BESTSELLER_LIMIT", 10),
		},
		Auth: AuthConfig{
			JWTSecret:         getString(v, "JWT_SECRET", ""),
			JWTIssuer:         getString(v, "JWT_ISSUER", "tienda-api"),
			JWTExpMinutes:     getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			AdminEmail:        getString(v, "ADMIN_EMAIL", ""),
			AdminPasswordHash: getString(v, "ADMIN_PASSWORD_HASH", ""),
		},
	}

	if cfg.Catalog.PageSize <= 0 {
		cfg.Catalog.PageSize = 12
	}
	if cfg.Catalog.BestSellerLimit <= 0 {
		cfg.Catalog.BestSellerLimit = 10
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
