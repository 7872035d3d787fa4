package store

import (
	"bytes"
	"encoding/json"

	"relaylog/pkg/docstore"
	"relaylog/pkg/errs"
	"relaylog/pkg/logger"
	"relaylog/pkg/models"
)

// Admin stores the typed operator documents. Each kind decodes into its
// fixed schema; unknown kinds and unknown fields are rejected.
type Admin struct {
	docs docstore.Client
}

func NewAdmin(docs docstore.Client) *Admin {
	return &Admin{docs: docs}
}

func emptyDoc(kind models.AdminKind) any {
	switch kind {
	case models.AdminErrors:
		return &models.ErrorsDoc{}
	case models.AdminTests:
		return &models.TestsDoc{}
	case models.AdminPersonalTasks:
		return &models.PersonalTasksDoc{}
	case models.AdminSkills:
		return &models.SkillsDoc{}
	case models.AdminConfig:
		return &models.ConfigDoc{}
	case models.AdminFeatureFlags:
		return &models.FeatureFlagsDoc{}
	default:
		return nil
	}
}

// Get returns the stored document for kind, or the kind's empty document
// when none has been written yet.
func (a *Admin) Get(kind models.AdminKind) (any, error) {
	out := emptyDoc(kind)
	if out == nil {
		return nil, errs.Malformed("unknown admin document kind " + string(kind))
	}
	doc, err := a.docs.Get(ColAdmin, string(kind))
	if err != nil {
		if docstore.IsNotFound(err) {
			return out, nil
		}
		return nil, errs.Unavailable("loading admin document", err)
	}
	if err := json.Unmarshal(doc.Data, out); err != nil {
		return nil, errs.Wrap(errs.KindMalformed, "stored admin document undecodable", err)
	}
	return out, nil
}

// Config returns the runtime-override document.
func (a *Admin) Config() (models.ConfigDoc, error) {
	v, err := a.Get(models.AdminConfig)
	if err != nil {
		return models.ConfigDoc{}, err
	}
	return *v.(*models.ConfigDoc), nil
}

// Put validates raw against the kind's schema and stores it. Unknown fields
// fail validation so typos do not silently vanish into the store.
func (a *Admin) Put(kind models.AdminKind, raw []byte) error {
	target := emptyDoc(kind)
	if target == nil {
		return errs.Malformed("unknown admin document kind " + string(kind))
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return errs.Wrap(errs.KindMalformed, "admin document rejected", err)
	}
	// re-marshal so the stored form is exactly the schema
	data, err := json.Marshal(target)
	if err != nil {
		return err
	}
	if err := a.docs.Put(ColAdmin, string(kind), data); err != nil {
		return errs.Unavailable("saving admin document", err)
	}
	logger.Info("admin_doc_saved", "kind", string(kind))
	return nil
}
