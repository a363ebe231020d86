package inmemdb

import (
	"sort"
	"time"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/document"
)

type documentRepository struct {
	db     *documentTable
	groups *groupTable
}

func NewDocumentRepository(db *DB) document.Repository {
	return &documentRepository{db: db.documents, groups: db.groups}
}

func (repo *documentRepository) query() []document.Document {
	docs := make([]document.Document, 0, len(repo.db.table))
	for _, d := range repo.db.table {
		docs = append(docs, *d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func (repo *documentRepository) CreateDocument(doc document.Document, _ ...core.DBExecutor) (document.Document, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pkCount++
	doc.ID = repo.db.pkCount
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	repo.db.table[doc.ID] = &doc
	return doc, nil
}

func (repo *documentRepository) GetDocumentByID(id int) (document.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if doc, ok := repo.db.table[id]; ok {
		return *doc, nil
	}
	return document.Document{}, document.ErrNotFound
}

func (repo *documentRepository) GetDocumentByGroupAndType(groupID int, typ document.Type) (document.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, doc := range repo.query() {
		if doc.GroupID == groupID && doc.Type == typ {
			return doc, nil
		}
	}
	return document.Document{}, document.ErrNotFound
}

func (repo *documentRepository) FilterDocumentsByGroupID(groupID int) ([]document.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var docs []document.Document
	for _, doc := range repo.query() {
		if doc.GroupID == groupID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (repo *documentRepository) FilterDocumentsBySupervisorID(supervisorID int) ([]document.Document, error) {
	supervised := make(map[int]bool)

	repo.groups.mutex.RLock()
	for _, grp := range repo.groups.table {
		if grp.SupervisorID != nil && *grp.SupervisorID == supervisorID {
			supervised[grp.ID] = true
		}
	}
	repo.groups.mutex.RUnlock()

	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var docs []document.Document
	for _, doc := range repo.query() {
		if supervised[doc.GroupID] {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (repo *documentRepository) FilterDocumentsByStatus(status document.Status) ([]document.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var docs []document.Document
	for _, doc := range repo.query() {
		if doc.Status == status {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (repo *documentRepository) UpdateDocument(doc document.Document, _ ...core.DBExecutor) (document.Document, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[doc.ID]
	if !ok {
		return document.Document{}, document.ErrNotFound
	}
	doc.CreatedAt = orig.CreatedAt
	doc.UpdatedAt = time.Now().UTC()
	repo.db.table[doc.ID] = &doc
	return doc, nil
}

func (repo *documentRepository) CreateVersionHistory(vh document.VersionHistory, _ ...core.DBExecutor) (document.VersionHistory, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.vhCount++
	vh.ID = repo.db.vhCount
	vh.CreatedAt = time.Now().UTC()
	repo.db.versions = append(repo.db.versions, vh)
	return vh, nil
}

func (repo *documentRepository) FilterVersionHistoryByDocumentID(documentID int) ([]document.VersionHistory, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var hist []document.VersionHistory
	for _, vh := range repo.db.versions {
		if vh.DocumentID == documentID {
			hist = append(hist, vh)
		}
	}
	sort.Slice(hist, func(i, j int) bool { return hist[i].VersionNumber > hist[j].VersionNumber })
	return hist, nil
}

func (repo *documentRepository) CreateReview(rev document.Review, _ ...core.DBExecutor) (document.Review, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.revCount++
	rev.ID = repo.db.revCount
	repo.db.reviews = append(repo.db.reviews, rev)
	return rev, nil
}

func (repo *documentRepository) FilterReviewsByDocumentID(documentID int) ([]document.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var reviews []document.Review
	for _, rev := range repo.db.reviews {
		if rev.DocumentID == documentID {
			reviews = append(reviews, rev)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].ID > reviews[j].ID })
	return reviews, nil
}
