package gcp

import "testing"

func TestPublicURLPassesThroughAbsoluteAndDisabled(t *testing.T) {
	s := &imageStore{cfg: ImageStoreConfig{Mode: ObjectStorageModeDisabled}}
	if got := s.PublicURL("/pic/model.png"); got != "/pic/model.png" {
		t.Fatalf("disabled mode rewrote key: %q", got)
	}

	s = &imageStore{cfg: ImageStoreConfig{Mode: ObjectStorageModeGCS, Bucket: "tees"}}
	if got := s.PublicURL("https://cdn.example.com/a.png"); got != "https://cdn.example.com/a.png" {
		t.Fatalf("absolute URL rewritten: %q", got)
	}
}

func TestPublicURLForModes(t *testing.T) {
	cases := []struct {
		name string
		cfg  ImageStoreConfig
		key  string
		want string
	}{
		{
			name: "gcs default host",
			cfg:  ImageStoreConfig{Mode: ObjectStorageModeGCS, Bucket: "tees"},
			key:  "/products/white.png",
			want: "https://storage.googleapis.com/tees/products/white.png",
		},
		{
			name: "cdn",
			cfg:  ImageStoreConfig{Mode: ObjectStorageModeGCS, Bucket: "tees", CDNDomain: "img.teecraft.test"},
			key:  "products/white.png",
			want: "https://img.teecraft.test/products/white.png",
		},
		{
			name: "emulator",
			cfg:  ImageStoreConfig{Mode: ObjectStorageModeGCSEmulator, Bucket: "tees", EmulatorHost: "http://localhost:4443/"},
			key:  "products/white.png",
			want: "http://localhost:4443/storage/v1/b/tees/o/products%2Fwhite.png?alt=media",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &imageStore{cfg: tc.cfg}
			if got := s.PublicURL(tc.key); got != tc.want {
				t.Fatalf("got=%q want=%q", got, tc.want)
			}
		})
	}
}

func TestParseObjectStorageMode(t *testing.T) {
	if m, err := ParseObjectStorageMode("", ""); err != nil || m != ObjectStorageModeDisabled {
		t.Fatalf("empty: mode=%q err=%v", m, err)
	}
	if m, err := ParseObjectStorageMode("", "http://fake-gcs:4443"); err != nil || m != ObjectStorageModeGCSEmulator {
		t.Fatalf("emulator fallback: mode=%q err=%v", m, err)
	}
	if _, err := ParseObjectStorageMode("s3", ""); err == nil {
		t.Fatalf("expected error for unsupported mode")
	}
}

func TestImageStoreConfigValidate(t *testing.T) {
	if err := (ImageStoreConfig{Mode: ObjectStorageModeGCS}).Validate(); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if err := (ImageStoreConfig{Mode: ObjectStorageModeGCSEmulator, Bucket: "b", EmulatorHost: "fake-gcs:4443"}).Validate(); err == nil {
		t.Fatalf("expected invalid emulator host error")
	}
	if err := (ImageStoreConfig{Mode: ObjectStorageModeDisabled}).Validate(); err != nil {
		t.Fatalf("disabled should validate: %v", err)
	}
}
