package renderer

import (
	"fmt"
	"log"

	com "shuriken/common"
	"shuriken/texture"

	vk "github.com/goki/vulkan"
)

// Texture is the sampled image bound at the texture binding.
type Texture struct {
	Image    *com.Image
	View     vk.ImageView
	Sampler  vk.Sampler
	Fallback bool
}

// Required on the optimal tiling of a texture format to sample from it and blit its mip chain.
const (
	sampledFeatures = vk.FormatFeatureFlags(vk.FormatFeatureSampledImageBit | vk.FormatFeatureTransferDstBit)
	blitFeatures    = vk.FormatFeatureFlags(vk.FormatFeatureBlitSrcBit | vk.FormatFeatureBlitDstBit)
	linearFeature   = vk.FormatFeatureFlags(vk.FormatFeatureSampledImageFilterLinearBit)
)

// textureFormat maps the pixel format of a decoded image onto a UNORM Vulkan format. RGB data is expanded to RGBA
// when rgbSupported is false, as many devices cannot sample three channel images.
func textureFormat(f texture.Format, rgbSupported bool) (format vk.Format, expand bool, err error) {
	switch f {
	case texture.FormatR8:
		return vk.FormatR8Unorm, false, nil
	case texture.FormatRGB8:
		if rgbSupported {
			return vk.FormatR8g8b8Unorm, false, nil
		}
		return vk.FormatR8g8b8a8Unorm, true, nil
	case texture.FormatRGBA8:
		return vk.FormatR8g8b8a8Unorm, false, nil
	default:
		return vk.FormatUndefined, false, fmt.Errorf("unsupported texture format %s", f)
	}
}

// mipLevelsFor limits the mip chain to one level when the format can not be blitted with linear filtering.
func mipLevelsFor(w, h int, features vk.FormatFeatureFlags) uint32 {
	if features&(blitFeatures|linearFeature) != blitFeatures|linearFeature {
		return 1
	}
	return texture.MipLevels(w, h)
}

func (c *Core) formatFeatures(format vk.Format) vk.FormatFeatureFlags {
	return com.ReadFormatProperties(c.device.PhysicalDevice, format).OptimalTilingFeatures
}

// createTexture uploads the configured image. When that fails for any reason the white 1x1 image is uploaded
// instead so the textured program still has something to sample.
func (c *Core) createTexture() {
	img := c.opts.Texture
	fallback := img == nil || img.IsWhiteFallback()
	if img == nil {
		img = texture.White()
	}
	tex, err := c.uploadTexture(img)
	if err != nil && !fallback {
		log.Printf("WARN: texture upload failed, using white fallback: %v", err)
		fallback = true
		tex, err = c.uploadTexture(texture.White())
	}
	if err != nil {
		log.Panicf("Failed to upload fallback texture: %v", err)
	}
	tex.Fallback = fallback
	c.tex = tex
	log.Printf("Texture ready: %dx%d, format %d, %d mip levels, fallback: %t",
		tex.Image.Width, tex.Image.Height, tex.Image.Format, tex.Image.MipLevels, tex.Fallback)
}

func (c *Core) uploadTexture(img *texture.Image) (tex *Texture, err error) {
	if img.Width <= 0 || img.Height <= 0 || len(img.Pix) != img.ByteSize() {
		return nil, fmt.Errorf("malformed %dx%d image with %d channels and %d bytes", img.Width, img.Height, img.Channels, len(img.Pix))
	}
	rgbSupported := c.formatFeatures(vk.FormatR8g8b8Unorm)&sampledFeatures == sampledFeatures
	format, expand, err := textureFormat(img.Format(), rgbSupported)
	if err != nil {
		return nil, err
	}
	if expand {
		img = img.ExpandRGBA()
	}
	features := c.formatFeatures(format)
	if features&sampledFeatures != sampledFeatures {
		return nil, fmt.Errorf("format %d can not be sampled on this device", format)
	}
	mipLevels := mipLevelsFor(img.Width, img.Height, features)

	tex = &Texture{}
	defer func() {
		if err != nil {
			c.destroyTextureResources(tex)
		}
	}()

	staging, err := com.CreateStagingBuffer(c.device, img.Pix)
	if err != nil {
		return tex, err
	}
	defer com.DestroyBuffer(c.device, staging)

	w, h := uint32(img.Width), uint32(img.Height)
	tex.Image, err = com.CreateImage(c.device, w, h, mipLevels, format,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit|vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return tex, err
	}

	err = c.singleTimeCommands(func(cmdBuf vk.CommandBuffer) {
		transitionImageLayout(cmdBuf, tex.Image.Handle, 0, mipLevels, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
		copyBufferToImage(cmdBuf, staging.Handle, tex.Image.Handle, w, h)
		generateMipmaps(cmdBuf, tex.Image.Handle, w, h, mipLevels)
	})
	if err != nil {
		return tex, fmt.Errorf("record texture upload: %w", err)
	}

	tex.View, err = com.VKSCreate2DImageView(c.device.Device, tex.Image.Handle, format, vk.ImageAspectFlags(vk.ImageAspectColorBit), mipLevels)
	if err != nil {
		return tex, fmt.Errorf("create texture view: %w", err)
	}
	tex.Sampler, err = createTextureSampler(c.device.Device, mipLevels)
	if err != nil {
		return tex, fmt.Errorf("create texture sampler: %w", err)
	}
	return tex, nil
}

// createTextureSampler repeats outside [0,1] and filters linearly between texels and mip levels.
func createTextureSampler(d vk.Device, mipLevels uint32) (vk.Sampler, error) {
	samplerInfo := &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		MipLodBias:              0.0,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1.0,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MinLod:                  0.0,
		MaxLod:                  float32(mipLevels),
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
	return com.VKCreateSampler(d, samplerInfo, nil)
}

func (c *Core) destroyTextureResources(tex *Texture) {
	if tex == nil {
		return
	}
	if tex.Sampler != nil {
		vk.DestroySampler(c.device.Device, tex.Sampler, nil)
		tex.Sampler = nil
	}
	if tex.View != nil {
		vk.DestroyImageView(c.device.Device, tex.View, nil)
		tex.View = nil
	}
	com.DestroyImage(c.device, tex.Image)
	tex.Image = nil
}

func (c *Core) destroyTexture() {
	c.destroyTextureResources(c.tex)
	c.tex = nil
}
