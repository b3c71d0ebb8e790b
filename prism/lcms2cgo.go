//go:build lcms2cgo

// Package prism cross-checks the pure Go color management in this module
// against lcms2. It is only built with the lcms2cgo tag and needs liblcms2.
package prism

/*
#cgo LDFLAGS: -llcms2
#include <lcms2.h>
#include <stdlib.h>

// Forward declaration for Go error handler callback
extern void go_lcms2_error_handler(void*, int, char *);

// Bridge to call Go error handler from C
static void lcms2_error_handler(cmsContext ctx, cmsUInt32Number code, const char *text) {
    go_lcms2_error_handler(cmsGetContextUserData(ctx), code, (char*)text);
}

static void set_lcms2_error_handler(cmsContext ctx) {
    cmsSetLogErrorHandlerTHR(ctx, lcms2_error_handler);
}

static const cmsUInt32Number rgb8_format = TYPE_RGB_8;
static const cmsUInt32Number perceptual_intent = INTENT_PERCEPTUAL;
*/
import "C"

import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/kovidgoyal/gllcms/prism/meta/icc"
)

type CMSProfile struct {
	DeviceColorSpace, PCSColorSpace icc.Signature
	ctx                             C.cmsContext
	p                               C.cmsHPROFILE
	error_messages                  []string
}

func (c *CMSProfile) Close() {
	if c.p != nil {
		C.cmsCloseProfile(c.p)
		c.p = nil
	}
	if c.ctx != nil {
		C.cmsDeleteContext(c.ctx)
		c.ctx = nil
	}
}

//export go_lcms2_error_handler
func go_lcms2_error_handler(ctx *C.void, code C.int, text *C.char) {
	profile := (*CMSProfile)(unsafe.Pointer(ctx))
	profile.error_messages = append(profile.error_messages, fmt.Sprintf("LCMS2 error: %d: %s", int(code), C.GoString(text)))
}

func (p *CMSProfile) call_func_with_error_handling(f func() string) error {
	p.error_messages = nil
	if msg := f(); msg != "" {
		if len(p.error_messages) > 0 {
			return fmt.Errorf("%s: %s", msg, strings.Join(p.error_messages, "\n"))
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func new_cms_profile(open func(*CMSProfile) C.cmsHPROFILE, failure string) (ans *CMSProfile, err error) {
	ans = &CMSProfile{}
	ans.ctx = C.cmsCreateContext(nil, unsafe.Pointer(ans))
	C.set_lcms2_error_handler(ans.ctx)
	err = ans.call_func_with_error_handling(func() string {
		if ans.p = open(ans); ans.p == nil {
			return failure
		}
		return ""
	})
	runtime.SetFinalizer(ans, func(obj any) {
		obj.(*CMSProfile).Close()
	})
	if ans.p != nil {
		ans.DeviceColorSpace = icc.Signature(C.cmsGetColorSpace(ans.p))
		ans.PCSColorSpace = icc.Signature(C.cmsGetPCS(ans.p))
	}
	return
}

// CreateCMSProfile opens a serialized ICC profile with lcms2.
func CreateCMSProfile(data []byte) (*CMSProfile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data not allowed")
	}
	return new_cms_profile(func(p *CMSProfile) C.cmsHPROFILE {
		return C.cmsOpenProfileFromMemTHR(p.ctx, unsafe.Pointer(&data[0]), C.cmsUInt32Number(len(data)))
	}, "failed to load ICC profile from provided data")
}

// CreateBCHSWProfile builds the lcms2 abstract profile for adj with no
// white point change.
func CreateBCHSWProfile(grid_points int, adj icc.BCHSW) (*CMSProfile, error) {
	return new_cms_profile(func(p *CMSProfile) C.cmsHPROFILE {
		return C.cmsCreateBCHSWabstractProfileTHR(p.ctx, C.cmsUInt32Number(grid_points),
			C.cmsFloat64Number(adj.Brightness), C.cmsFloat64Number(adj.Contrast),
			C.cmsFloat64Number(adj.Hue), C.cmsFloat64Number(adj.Saturation), 0, 0)
	}, "failed to create BCHSW abstract profile")
}

type CMSTransform struct {
	owner *CMSProfile
	t     C.cmsHTRANSFORM
}

// CreateRGB8Transform links profiles into a perceptual 8-bit RGB transform.
// The profiles must outlive the transform.
func CreateRGB8Transform(profiles ...*CMSProfile) (ans *CMSTransform, err error) {
	if len(profiles) < 2 {
		return nil, fmt.Errorf("a transform needs at least two profiles, got %d", len(profiles))
	}
	handles := make([]C.cmsHPROFILE, len(profiles))
	for i, p := range profiles {
		handles[i] = p.p
	}
	owner := profiles[0]
	ans = &CMSTransform{owner: owner}
	err = owner.call_func_with_error_handling(func() string {
		ans.t = C.cmsCreateMultiprofileTransformTHR(owner.ctx, &handles[0], C.cmsUInt32Number(len(handles)),
			C.rgb8_format, C.rgb8_format, C.perceptual_intent, 0)
		if ans.t == nil {
			return "failed to create transform"
		}
		return ""
	})
	if err != nil {
		return nil, err
	}
	runtime.SetFinalizer(ans, func(obj any) {
		obj.(*CMSTransform).Close()
	})
	return ans, nil
}

func (t *CMSTransform) Close() {
	if t.t != nil {
		C.cmsDeleteTransform(t.t)
		t.t = nil
	}
}

// Transform converts packed RGB triplets.
func (t *CMSTransform) Transform(rgb []byte) []byte {
	out := make([]byte, len(rgb))
	if n := len(rgb) / 3; n > 0 {
		C.cmsDoTransform(t.t, unsafe.Pointer(&rgb[0]), unsafe.Pointer(&out[0]), C.cmsUInt32Number(n))
	}
	runtime.KeepAlive(t.owner)
	return out
}
