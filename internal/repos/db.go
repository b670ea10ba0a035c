package repos

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	ErrNotFound = errors.New("not found")
	ErrInUse    = errors.New("still in use")
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: keeps :memory: databases alive and serializes SQLite writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// seedIfEmpty inserts a small demo catalog on a fresh database.
func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products/variations")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`INSERT INTO categories(slug,name,sort_order) VALUES
		  ('anillos','Anillos',1),
		  ('cadenas','Cadenas',2),
		  ('aros','Aros',3),
		  ('colgantes','Colgantes',4)`,
		`INSERT INTO products(id,name,description,price,stock,category,image_url,is_new,is_featured) VALUES
		  ('anillo-solitario','Anillo Solitario Plata 950','Anillo de plata 950 con circón central',45990,15,'anillos','/media/anillo-solitario.jpg',0,1),
		  ('anillo-trenzado','Anillo Trenzado','Plata 950, diseño trenzado',24990,8,'anillos','/media/anillo-trenzado.jpg',1,0),
		  ('cadena-plata','Cadena de Plata 950','Elige marca, grosor y largo',18000,0,'cadenas','/media/cadena-plata.jpg',0,1),
		  ('aros-perla','Aros Perla','Perla cultivada, cierre mariposa',19990,12,'aros','/media/aros-perla.jpg',1,1),
		  ('colgante-luna','Colgante Luna','Colgante media luna en plata',15990,3,'colgantes','/media/colgante-luna.jpg',0,0)`,
		`INSERT INTO product_variations(id,product_id,brand,thickness,length,stock,price_modifier) VALUES
		  ('cadena-plata-ven-1-45','cadena-plata','Veneciana','1mm','45cm',10,0),
		  ('cadena-plata-ven-1-50','cadena-plata','Veneciana','1mm','50cm',6,1500),
		  ('cadena-plata-cub-2-50','cadena-plata','Cubana','2mm','50cm',4,7325),
		  ('cadena-plata-cub-3-60','cadena-plata','Cubana','3mm','60cm',2,14750)`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return tx.Commit()
}
