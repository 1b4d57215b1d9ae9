package config

// applyLocalDefaults fills in what the docker-compose development stack
// provides: a plain-HTTP MinIO with root credentials.
func applyLocalDefaults(cfg *Config, env func(string) string) {
	s3 := &cfg.Knowledge.S3
	if env("KB_S3_USE_SSL") == "" {
		s3.UseSSL = false
	}
	if s3.Bucket != "" && s3.Endpoint == "" {
		s3.Endpoint = firstNonEmpty(env("KB_MINIO_ENDPOINT"), "minio:9000")
	}
	s3.AccessKey = firstNonEmpty(s3.AccessKey, env("MINIO_ROOT_USER"))
	s3.SecretKey = firstNonEmpty(s3.SecretKey, env("MINIO_ROOT_PASSWORD"))
}
