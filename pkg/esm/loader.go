package esm

import (
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/vvardenfell/pkg/dataerr"
	"github.com/Faultbox/vvardenfell/pkg/encoding"
)

// ErrMissingID is returned when a record has no NAME subrecord.
var ErrMissingID = errors.New("record has no identifier")

// recordBuilder decodes one record into t. Errors are recoverable: the
// loader logs them and resumes at the next record.
type recordBuilder func(r *Reader, t *Tables, h RecordHeader) error

var builders = map[Tag]recordBuilder{
	TagTES3: buildHeader,
	TagSTAT: buildStatic,
	TagDOOR: buildDoor,
	TagACTI: buildActivator,
	TagCONT: buildContainer,
	TagLIGH: buildLight,
	TagNPC_: buildNPC,
	TagCREA: buildCreature,
	TagRACE: buildRace,
	TagBODY: buildBodyPart,
	TagWEAP: buildWeapon,
	TagARMO: buildArmor,
	TagCLOT: buildClothing,
	TagLTEX: buildLandTexture,
	TagCELL: buildCell,
	TagLAND: buildLand,
}

// LoadFile reads and decodes a content file from disk.
func LoadFile(path string, log *zap.Logger) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &dataerr.IOError{Path: path, Err: err}
	}
	return Load(data, path, log)
}

// Load decodes a whole content file. Records without a builder are skipped;
// records whose subrecords are malformed are logged and abandoned. A corrupt
// record header aborts the load and no tables are returned.
func Load(data []byte, name string, log *zap.Logger) (*Tables, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r, err := Open(data, name)
	if err != nil {
		return nil, err
	}

	t := NewTables(name)
	for r.HasMoreRecords() {
		h, err := r.NextRecord()
		if err != nil {
			return nil, err
		}

		build, ok := builders[h.Tag]
		if !ok {
			t.Skipped++
			if err := r.SkipRecord(); err != nil {
				return nil, err
			}
			continue
		}

		err = build(r, t, h)
		if err == nil {
			err = r.EndRecord()
		}
		if err != nil {
			log.Warn("skipping malformed record",
				zap.String("file", name),
				zap.Stringer("record", h.Tag),
				zap.Int64("offset", h.Offset),
				zap.Error(err))
			t.Recovered++
			if err := r.SkipRecord(); err != nil {
				return nil, err
			}
		}
	}

	log.Debug("content file decoded",
		zap.String("file", name),
		zap.Int("entries", t.Count()),
		zap.Int("skipped", t.Skipped),
		zap.Int("recovered", t.Recovered))
	return t, nil
}

// put stores v under its folded identifier.
func put[T interface{ base() *Base }](m map[string]T, v T) error {
	id := v.base().ID
	if id == "" {
		return ErrMissingID
	}
	m[encoding.FoldKey(id)] = v
	return nil
}

// buildHeader reads the TES3 file header and master list.
func buildHeader(r *Reader, t *Tables, _ RecordHeader) error {
	for r.HasMoreSubs() {
		tag, err := r.NextSub()
		if err != nil {
			return err
		}
		switch tag {
		case subHEDR:
			t.Header.Version = r.SubF32()
			t.Header.Flags = r.SubU32()
			t.Header.Author = r.SubFixedString(32)
			t.Header.Description = r.SubFixedString(256)
			t.Header.NumRecords = r.SubU32()
		case subMAST:
			t.Header.Masters = append(t.Header.Masters, Master{Name: r.SubString()})
		case subDATA:
			if n := len(t.Header.Masters); n > 0 {
				t.Header.Masters[n-1].Size = r.SubU64()
			}
		default:
			r.SkipSub()
		}
	}
	return r.Err()
}

// readItem reads an NPCO inventory entry.
func readItem(r *Reader) InventoryItem {
	count := r.SubI32()
	return InventoryItem{Count: count, ID: r.SubFixedString(32)}
}

// readPart reads an INDX body slot and its optional BNAM/CNAM parts.
func readPart(r *Reader) PartReference {
	p := PartReference{Part: r.SubU8()}
	if r.IsNextSub(subBNAM) {
		p.Male = r.SubString()
	}
	if r.IsNextSub(subCNAM) {
		p.Female = r.SubString()
	}
	return p
}
