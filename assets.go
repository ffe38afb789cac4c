package bramble

import "sync"

// FontHandle, ImageHandle and PathHandle name assets in an Assets service.
// The zero handle never resolves.
type (
	FontHandle  uint32
	ImageHandle uint32
	PathHandle  uint32
)

// ImageInfo describes a loaded image. Texture is the backing texture the
// host draws from and Src the sub-rectangle inside it. For a standalone
// image Texture is the image's own handle and Src covers it entirely.
type ImageInfo struct {
	Width, Height float64
	Texture       ImageHandle
	Src           Rect
}

// Assets answers handle lookups. Each lookup reports false while the asset
// is not loaded; callers never block. Implementations must be safe for
// concurrent readers because extraction may run in parallel.
type Assets interface {
	Font(h FontHandle) (FontMetrics, bool)
	Image(h ImageHandle) (ImageInfo, bool)
	Path(h PathHandle) ([]PathCommand, bool)
}

// AssetStore is a map-backed Assets implementation. Handles can be reserved
// before the asset arrives so widgets can reference it while it streams in.
type AssetStore struct {
	mu     sync.RWMutex
	next   uint32
	fonts  map[FontHandle]FontMetrics
	images map[ImageHandle]ImageInfo
	paths  map[PathHandle][]PathCommand
}

// NewAssetStore creates an empty store.
func NewAssetStore() *AssetStore {
	return &AssetStore{
		fonts:  make(map[FontHandle]FontMetrics),
		images: make(map[ImageHandle]ImageInfo),
		paths:  make(map[PathHandle][]PathCommand),
	}
}

func (s *AssetStore) reserve() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

// ReserveFont returns a handle whose font is not loaded yet.
func (s *AssetStore) ReserveFont() FontHandle { return FontHandle(s.reserve()) }

// ReserveImage returns a handle whose image is not loaded yet.
func (s *AssetStore) ReserveImage() ImageHandle { return ImageHandle(s.reserve()) }

// ReservePath returns a handle whose path is not loaded yet.
func (s *AssetStore) ReservePath() PathHandle { return PathHandle(s.reserve()) }

// AddFont registers m under a new handle.
func (s *AssetStore) AddFont(m FontMetrics) FontHandle {
	h := s.ReserveFont()
	s.SetFont(h, m)
	return h
}

// SetFont loads m under h. Passing nil unloads it.
func (s *AssetStore) SetFont(h FontHandle, m FontMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m == nil {
		delete(s.fonts, h)
		return
	}
	s.fonts[h] = m
}

// AddImage registers a standalone image of the given size under a new
// handle.
func (s *AssetStore) AddImage(width, height float64) ImageHandle {
	h := s.ReserveImage()
	s.SetImage(h, ImageInfo{Width: width, Height: height, Texture: h, Src: Rect{Width: width, Height: height}})
	return h
}

// AddImageInfo registers info under a new handle. Use it for regions of a
// shared texture such as atlas frames.
func (s *AssetStore) AddImageInfo(info ImageInfo) ImageHandle {
	h := s.ReserveImage()
	s.SetImage(h, info)
	return h
}

// SetImage loads info under h.
func (s *AssetStore) SetImage(h ImageHandle, info ImageInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[h] = info
}

// AddPath registers cmds under a new handle.
func (s *AssetStore) AddPath(cmds []PathCommand) PathHandle {
	h := s.ReservePath()
	s.SetPath(h, cmds)
	return h
}

// SetPath loads cmds under h.
func (s *AssetStore) SetPath(h PathHandle, cmds []PathCommand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[h] = cmds
}

// UnloadImage forgets the image under h.
func (s *AssetStore) UnloadImage(h ImageHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.images, h)
}

// UnloadPath forgets the path under h.
func (s *AssetStore) UnloadPath(h PathHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paths, h)
}

// Font implements Assets.
func (s *AssetStore) Font(h FontHandle) (FontMetrics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.fonts[h]
	return m, ok
}

// Image implements Assets.
func (s *AssetStore) Image(h ImageHandle) (ImageInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.images[h]
	return info, ok
}

// Path implements Assets.
func (s *AssetStore) Path(h PathHandle) ([]PathCommand, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.paths[h]
	return p, ok
}

// noAssets resolves nothing. Used when no Assets service is configured.
type noAssets struct{}

func (noAssets) Font(FontHandle) (FontMetrics, bool) { return nil, false }
func (noAssets) Image(ImageHandle) (ImageInfo, bool) { return ImageInfo{}, false }
func (noAssets) Path(PathHandle) ([]PathCommand, bool) { return nil, false }
