package comfy

// widgetNames names the positional widget values of well-known node types.
// Sampler tables include the "control_after_generate" value the editor
// stores right after the seed.
var widgetNames = map[string][]string{
	"KSampler": {
		"seed", "control_after_generate", "steps", "cfg",
		"sampler_name", "scheduler", "denoise",
	},
	"KSamplerAdvanced": {
		"add_noise", "noise_seed", "control_after_generate", "steps", "cfg",
		"sampler_name", "scheduler", "start_at_step", "end_at_step",
		"return_with_leftover_noise",
	},
	"KSampler (Efficient)": {
		"seed", "control_after_generate", "steps", "cfg",
		"sampler_name", "scheduler", "denoise", "preview_method", "vae_decode",
	},
	"CLIPTextEncode":            {"text"},
	"CLIPTextEncodeSDXL":        {"width", "height", "crop_w", "crop_h", "target_width", "target_height", "text_g", "text_l"},
	"CLIPTextEncodeSDXLRefiner": {"ascore", "width", "height", "text"},
	"CheckpointLoaderSimple":    {"ckpt_name"},
	"CheckpointLoader":          {"config_name", "ckpt_name"},
	"ImageOnlyCheckpointLoader": {"ckpt_name"},
	"UNETLoader":                {"unet_name", "weight_dtype"},
	"VAELoader":                 {"vae_name"},
	"LoraLoader":                {"lora_name", "strength_model", "strength_clip"},
	"LoraLoaderModelOnly":       {"lora_name", "strength_model"},
	"EmptyLatentImage":          {"width", "height", "batch_size"},
	"EmptySD3LatentImage":       {"width", "height", "batch_size"},
	"SaveImage":                 {"filename_prefix"},
	"PreviewImage":              {},
}
