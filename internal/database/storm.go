package database

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/json"
	"github.com/asdine/storm/v3/q"
	"github.com/gofrs/uuid"
	"github.com/mdouchement/bakuwaki/internal/model"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

type strm struct {
	db *storm.DB
}

// StormCodec is the format used to store data in the database.
var StormCodec = storm.Codec(json.Codec)

// LockTimeout is the maximum time spent waiting for the database file lock held by another process.
var LockTimeout = time.Second

func open(database string) (*storm.DB, error) {
	db, err := storm.Open(database, StormCodec, storm.BoltOptions(0600, &bolt.Options{Timeout: LockTimeout}))
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}
	return db, nil
}

// StormInit initializes Storm database.
func StormInit(database string) error {
	db, err := open(database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Init(&model.MoonAge{}); err != nil {
		return errors.Wrap(err, "could not init moon age index")
	}

	err = db.Init(&model.Forecast{})
	return errors.Wrap(err, "could not init forecast index")
}

// StormReIndex rebuilds all the indexes of the database.
func StormReIndex(database string) error {
	db, err := open(database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ReIndex(&model.MoonAge{}); err != nil {
		return errors.Wrap(err, "could not ReIndex moon ages")
	}

	err = db.ReIndex(&model.Forecast{})
	return errors.Wrap(err, "could not ReIndex forecasts")
}

// StormOpen opens the database.
func StormOpen(database string) (Client, error) {
	db, err := open(database)
	if err != nil {
		return nil, err
	}

	return &strm{
		db: db,
	}, nil
}

func (c *strm) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetID() == "" {
		m.SetID(uuid.Must(uuid.NewV4()).String())
		m.SetCreatedAt(t)
	}

	return errors.Wrap(c.db.Save(m), "could not save the model")
}

func (c *strm) Delete(m model.Model) error {
	return errors.Wrap(c.db.DeleteStruct(m), "could not delete the model")
}

func (c *strm) Close() error {
	return c.db.Close()
}

func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

//
// Moon age
//

func (c *strm) FindMoonAge(date string) (*model.MoonAge, error) {
	var age model.MoonAge
	err := c.db.One("Date", date, &age)
	return &age, errors.Wrap(err, "could not find moon age")
}

//
// Forecast
//

func (c *strm) ListForecasts() ([]*model.Forecast, error) {
	forecasts := make([]*model.Forecast, 0)
	err := c.db.Select().OrderBy("IssuedOn").Reverse().Find(&forecasts)
	if c.IsNotFound(err) {
		return forecasts, nil
	}
	return forecasts, errors.Wrap(err, "could not get all forecasts")
}

func (c *strm) FindForecast(issuedOn string) (*model.Forecast, error) {
	var forecast model.Forecast
	err := c.db.One("IssuedOn", issuedOn, &forecast)
	return &forecast, errors.Wrap(err, "could not find forecast")
}

func (c *strm) DeleteForecastsBefore(issuedOn string) (int, error) {
	query := c.db.Select(q.Lt("IssuedOn", issuedOn))

	n, err := query.Count(&model.Forecast{})
	if c.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "could not count outdated forecasts")
	}
	if n == 0 {
		return 0, nil
	}

	err = query.Delete(&model.Forecast{})
	if c.IsNotFound(err) {
		return 0, nil
	}
	return n, errors.Wrap(err, "could not delete outdated forecasts")
}
