package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"sync"
	"time"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/repo"
)

type fakeVideoRepo struct {
	mu     sync.Mutex
	videos map[string]*entity.Video
	nextID uint
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: map[string]*entity.Video{}}
}

func (r *fakeVideoRepo) Create(ctx context.Context, video *entity.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[video.PublicID]; ok {
		return &gateway.ValidationError{Field: "public_id", Reason: "already exists"}
	}
	r.nextID++
	video.ID = r.nextID
	if video.ProcessingState == nil {
		video.ProcessingState = entity.NewProcessingState(video.ID)
	}
	video.ProcessingState.VideoID = video.ID
	r.videos[video.PublicID] = video
	return nil
}

func (r *fakeVideoRepo) GetByPublicID(ctx context.Context, publicID string) (*entity.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, ok := r.videos[publicID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return video, nil
}

func (r *fakeVideoRepo) ListByOwner(ctx context.Context, ownerID uint) ([]*entity.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Video
	for _, v := range r.videos {
		if v.OwnerID == ownerID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) Delete(ctx context.Context, publicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[publicID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.videos, publicID)
	return nil
}

type fakeStateRepo struct {
	mu     sync.Mutex
	states map[uint]*entity.ProcessingState
	saves  int
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: map[uint]*entity.ProcessingState{}}
}

func (r *fakeStateRepo) GetByVideoID(ctx context.Context, videoID uint) (*entity.ProcessingState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[videoID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return state, nil
}

func (r *fakeStateRepo) Save(ctx context.Context, state *entity.ProcessingState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.VideoID] = state
	r.saves++
	return nil
}

type fakeFormatRepo struct {
	mu      sync.Mutex
	formats map[uint][]entity.VideoFormat
}

func newFakeFormatRepo() *fakeFormatRepo {
	return &fakeFormatRepo{formats: map[uint][]entity.VideoFormat{}}
}

func (r *fakeFormatRepo) ReplaceForVideo(ctx context.Context, videoID uint, formats []entity.VideoFormat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats[videoID] = formats
	return nil
}

func (r *fakeFormatRepo) ListByVideoID(ctx context.Context, videoID uint) ([]entity.VideoFormat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.formats[videoID], nil
}

type fakeUrlRepo struct {
	mu      sync.Mutex
	tickets map[string]*entity.VideoUploadUrl
}

func newFakeUrlRepo() *fakeUrlRepo {
	return &fakeUrlRepo{tickets: map[string]*entity.VideoUploadUrl{}}
}

func (r *fakeUrlRepo) Create(ctx context.Context, url *entity.VideoUploadUrl) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[url.PublicVideoID] = url
	return nil
}

func (r *fakeUrlRepo) GetByPublicVideoID(ctx context.Context, publicVideoID string) (*entity.VideoUploadUrl, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[publicVideoID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return ticket, nil
}

func (r *fakeUrlRepo) Save(ctx context.Context, url *entity.VideoUploadUrl) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[url.PublicVideoID] = url
	return nil
}

func (r *fakeUrlRepo) DeleteExpired(ctx context.Context, now time.Time, grace time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, ticket := range r.tickets {
		if ticket.Collectable(now, grace) {
			delete(r.tickets, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakePlaylistRepo struct {
	mu        sync.Mutex
	playlists map[string]*entity.Playlist
	members   map[uint][]uint
	nextID    uint
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{
		playlists: map[string]*entity.Playlist{},
		members:   map[uint][]uint{},
	}
}

func (r *fakePlaylistRepo) Create(ctx context.Context, playlist *entity.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	playlist.ID = r.nextID
	r.playlists[playlist.PublicID] = playlist
	return nil
}

func (r *fakePlaylistRepo) GetByPublicID(ctx context.Context, publicID string) (*entity.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	playlist, ok := r.playlists[publicID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return playlist, nil
}

func (r *fakePlaylistRepo) AddVideo(ctx context.Context, playlistID, videoID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.members[playlistID] {
		if id == videoID {
			return nil
		}
	}
	r.members[playlistID] = append(r.members[playlistID], videoID)
	return nil
}

func (r *fakePlaylistRepo) RemoveVideo(ctx context.Context, playlistID, videoID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.members[playlistID]
	for i, id := range ids {
		if id == videoID {
			r.members[playlistID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakePlaylistRepo) ListVideos(ctx context.Context, playlistID uint) ([]*entity.Video, error) {
	return nil, nil
}

// fakeHandle is a scriptable job handle.
type fakeHandle struct {
	mu         sync.Mutex
	id         string
	progress   int
	done       bool
	successful bool
	err        error
}

func (h *fakeHandle) ID() string { return h.id }
func (h *fakeHandle) IsDone() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}
func (h *fakeHandle) IsSuccessful() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.successful
}
func (h *fakeHandle) Progress() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress
}
func (h *fakeHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *fakeHandle) finish(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = true
	h.successful = err == nil
	h.err = err
	if err == nil {
		h.progress = 100
	}
}

// fakeBackend records calls and serves scripted handles and formats.
type fakeBackend struct {
	mu             sync.Mutex
	handles        []gateway.JobHandle
	startErr       error
	formats        []gateway.Format
	uploads        map[string]string
	deleted        []string
	subtitles      map[string]string
	thumbnails     []string
	posterFrames   []string
	thumbnailErr   error
	posterErr      error
	deleteSubCalls []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		uploads:   map[string]string{},
		subtitles: map[string]string{},
	}
}

func (b *fakeBackend) UploadVideo(ctx context.Context, videoID string, src io.Reader, filename string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	b.uploads[videoID+"/"+filename] = string(content)
	return nil
}

func (b *fakeBackend) DeleteVideo(ctx context.Context, videoID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, videoID)
	return nil
}

func (b *fakeBackend) VideoURL(videoID, formatName string) string {
	return fmt.Sprintf("http://assets/videos/%s/%s.mp4", videoID, formatName)
}

func (b *fakeBackend) UploadSubtitle(ctx context.Context, videoID, subtitleID, languageCode, content string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subtitles[videoID+"/"+subtitleID+"."+languageCode] = content
	return nil
}

func (b *fakeBackend) DeleteSubtitle(ctx context.Context, videoID, subtitleID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleteSubCalls = append(b.deleteSubCalls, videoID+"/"+subtitleID)
	return nil
}

func (b *fakeBackend) SubtitleURL(videoID, subtitleID, languageCode string) string {
	return fmt.Sprintf("http://assets/videos/%s/subs/%s.%s.vtt", videoID, subtitleID, languageCode)
}

func (b *fakeBackend) UploadThumbnail(ctx context.Context, videoID, thumbID string, src io.Reader) error {
	return nil
}

func (b *fakeBackend) DeleteThumbnail(ctx context.Context, videoID, thumbID string) error {
	return nil
}

func (b *fakeBackend) ThumbnailURL(videoID, thumbID string) string {
	return fmt.Sprintf("http://assets/videos/%s/thumbs/%s.jpg", videoID, thumbID)
}

func (b *fakeBackend) PosterFramesURL(videoID, posterID string) string {
	return fmt.Sprintf("http://assets/videos/%s/poster/%s/cue.vtt", videoID, posterID)
}

func (b *fakeBackend) StartTranscoding(ctx context.Context, videoID string) ([]gateway.JobHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.startErr != nil {
		return nil, b.startErr
	}
	return b.handles, nil
}

func (b *fakeBackend) CheckProgress(ctx context.Context, handle gateway.JobHandle) (int, bool, error) {
	if handle.IsDone() && !handle.IsSuccessful() {
		return handle.Progress(), true, &gateway.TranscodingFailedError{Detail: handle.Err().Error()}
	}
	return handle.Progress(), handle.IsDone(), nil
}

func (b *fakeBackend) IterFormats(ctx context.Context, videoID string) iter.Seq[gateway.Format] {
	return func(yield func(gateway.Format) bool) {
		for _, f := range b.formats {
			if !yield(f) {
				return
			}
		}
	}
}

func (b *fakeBackend) CreateThumbnail(ctx context.Context, videoID, thumbID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.thumbnailErr != nil {
		return b.thumbnailErr
	}
	b.thumbnails = append(b.thumbnails, videoID+"/"+thumbID)
	return nil
}

func (b *fakeBackend) CreatePosterFrames(ctx context.Context, videoID, posterID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.posterErr != nil {
		return b.posterErr
	}
	b.posterFrames = append(b.posterFrames, videoID+"/"+posterID)
	return nil
}

// fakePublisher records published encode requests.
type fakePublisher struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (p *fakePublisher) PublishEncodeRequest(ctx context.Context, publicVideoID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, publicVideoID)
	return nil
}

// fakeCache is an in-memory VideoCacheReader.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, publicVideoID string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[publicVideoID]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(payload, dest)
}

func (c *fakeCache) Set(ctx context.Context, publicVideoID string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.entries[publicVideoID] = payload
	c.sets++
}
