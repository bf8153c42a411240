package main

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/varmint/varmint/adt"

	bolt "go.etcd.io/bbolt"
)

// Journal records dispatch outcomes in a bbolt file, one bucket per
// case set, keyed by a sequence number.
type Journal struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

// Entry is one recorded dispatch.
type Entry struct {
	At      string      `json:"at"`
	Message string      `json:"message"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func NewJournal(filename string) *Journal {
	return &Journal{
		filename: filename,
	}
}

func (j *Journal) Open() error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(j.filename, 0644, opts)
	if err != nil {
		return err
	}
	j.db = db
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends an entry to the named bucket.
func (j *Journal) Record(name string, message []byte, result interface{}, derr error) error {
	entry := Entry{
		At:      time.Now().UTC().Format(time.RFC3339Nano),
		Message: string(message),
	}
	if derr != nil {
		entry.Error = derr.Error()
	} else {
		entry.Result = adt.Render(result)
	}

	js, err := json.Marshal(&entry)
	if err != nil {
		return err
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, js)
	})
}

// List returns the recorded entries for the named bucket, oldest
// first, up to the given limit (0 means no limit).
func (j *Journal) List(name string, limit int) ([]Entry, error) {
	acc := make([]Entry, 0, 32)
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(name))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			acc = append(acc, entry)
			if 0 < limit && limit <= len(acc) {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}
